package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/danielagrograos-wq/senior/internal/models"
)

type reviewStore interface {
	Create(ctx context.Context, bookingID, clientID, caregiverID int64, rating int, comment string) (*models.Review, error)
	ExistsForBooking(ctx context.Context, bookingID int64) (bool, error)
	ListByCaregiver(ctx context.Context, caregiverID int64, limit, offset int) ([]models.Review, int, error)
	AverageForCaregiver(ctx context.Context, caregiverID int64) (float64, int, error)
}

type caregiverRatingWriter interface {
	UpdateRating(ctx context.Context, caregiverID int64, rating float64, totalReviews int) error
}

type ReviewService struct {
	reviewRepo    reviewStore
	bookingRepo   bookingReader
	caregiverRepo caregiverRatingWriter
	userRepo      userReader
	notifier      Notifier
}

func NewReviewService(
	reviewRepo reviewStore,
	bookingRepo bookingReader,
	caregiverRepo caregiverRatingWriter,
	userRepo userReader,
	notifier Notifier,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		bookingRepo:   bookingRepo,
		caregiverRepo: caregiverRepo,
		userRepo:      userRepo,
		notifier:      notifier,
	}
}

type CreateReviewInput struct {
	BookingID int64
	Rating    int
	Comment   string
}

// CreateReview accepts one review per completed booking and folds it into
// the caregiver's aggregate rating.
func (s *ReviewService) CreateReview(
	ctx context.Context,
	actorID int64,
	role string,
	input CreateReviewInput,
) (*models.Review, error) {
	if role != "client" {
		return nil, ErrForbidden
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidInput
	}

	booking, err := s.bookingRepo.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != actorID {
		return nil, ErrForbidden
	}
	if booking.Status != models.BookingCompleted {
		return nil, ErrInvalidStateTransition
	}

	exists, err := s.reviewRepo.ExistsForBooking(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	review, err := s.reviewRepo.Create(ctx, booking.ID, actorID, booking.CaregiverID, input.Rating, strings.TrimSpace(input.Comment))
	if err != nil {
		return nil, err
	}

	avg, count, err := s.reviewRepo.AverageForCaregiver(ctx, booking.CaregiverID)
	if err != nil {
		return nil, err
	}
	if err := s.caregiverRepo.UpdateRating(ctx, booking.CaregiverID, math.Round(avg*10)/10, count); err != nil {
		return nil, err
	}

	client, err := s.userRepo.GetByID(ctx, actorID)
	if err == nil {
		s.notifier.Notify(booking.CaregiverUserID, "review",
			"Nova avaliação recebida",
			fmt.Sprintf("Você recebeu %d estrelas de %s", input.Rating, client.Name),
			map[string]any{"review_id": review.ID})
	}

	return review, nil
}

func (s *ReviewService) ListForCaregiver(
	ctx context.Context,
	caregiverID int64,
	limit, offset int,
) ([]models.Review, int, error) {
	if caregiverID <= 0 {
		return nil, 0, ErrInvalidInput
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.reviewRepo.ListByCaregiver(ctx, caregiverID, limit, offset)
}
