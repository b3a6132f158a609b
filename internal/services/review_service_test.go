package services

import (
	"context"
	"errors"
	"testing"

	"github.com/danielagrograos-wq/senior/internal/models"
)

type stubReviewStore struct {
	exists  bool
	created []models.Review
	avg     float64
	count   int
}

func (s *stubReviewStore) Create(_ context.Context, bookingID, clientID, caregiverID int64, rating int, comment string) (*models.Review, error) {
	review := models.Review{
		ID:          int64(len(s.created) + 1),
		BookingID:   bookingID,
		ClientID:    clientID,
		CaregiverID: caregiverID,
		Rating:      rating,
	}
	if comment != "" {
		review.Comment = &comment
	}
	s.created = append(s.created, review)
	return &review, nil
}

func (s *stubReviewStore) ExistsForBooking(_ context.Context, _ int64) (bool, error) {
	return s.exists, nil
}

func (s *stubReviewStore) ListByCaregiver(_ context.Context, _ int64, _, _ int) ([]models.Review, int, error) {
	return s.created, len(s.created), nil
}

func (s *stubReviewStore) AverageForCaregiver(_ context.Context, _ int64) (float64, int, error) {
	return s.avg, s.count, nil
}

type stubRatingWriter struct {
	rating float64
	total  int
	calls  int
}

func (s *stubRatingWriter) UpdateRating(_ context.Context, _ int64, rating float64, total int) error {
	s.rating = rating
	s.total = total
	s.calls++
	return nil
}

type stubUserReader struct {
	user *models.User
}

func (s *stubUserReader) GetByID(_ context.Context, _ int64) (*models.User, error) {
	return s.user, nil
}

func newReviewFixture(status string) (*ReviewService, *stubReviewStore, *stubRatingWriter, *stubNotifier) {
	bookings := &stubBookingReader{booking: &models.Booking{
		ID:              5,
		CaregiverID:     9,
		CaregiverUserID: 100,
		ClientID:        200,
		Status:          status,
	}}
	reviews := &stubReviewStore{avg: 4.3333, count: 3}
	ratings := &stubRatingWriter{}
	notifier := &stubNotifier{}
	users := &stubUserReader{user: &models.User{ID: 200, Name: "João Souza"}}
	service := NewReviewService(reviews, bookings, ratings, users, notifier)
	return service, reviews, ratings, notifier
}

func TestCreateReviewRecomputesCaregiverRating(t *testing.T) {
	service, reviews, ratings, notifier := newReviewFixture(models.BookingCompleted)

	review, err := service.CreateReview(context.Background(), 200, "client", CreateReviewInput{
		BookingID: 5,
		Rating:    5,
		Comment:   "  Excelente cuidadora  ",
	})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if review.CaregiverID != 9 {
		t.Fatalf("review bound to caregiver %d, want 9", review.CaregiverID)
	}
	if len(reviews.created) != 1 || *reviews.created[0].Comment != "Excelente cuidadora" {
		t.Fatalf("expected trimmed comment, got %+v", reviews.created)
	}
	if ratings.calls != 1 || ratings.rating != 4.3 || ratings.total != 3 {
		t.Fatalf("expected rating rounded to 4.3 over 3 reviews, got %v over %d", ratings.rating, ratings.total)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].UserID != 100 || notifier.sent[0].Type != "review" {
		t.Fatalf("expected caregiver review notification, got %+v", notifier.sent)
	}
}

func TestCreateReviewRequiresCompletedBooking(t *testing.T) {
	service, _, _, _ := newReviewFixture(models.BookingInProgress)

	_, err := service.CreateReview(context.Background(), 200, "client", CreateReviewInput{BookingID: 5, Rating: 4})
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestCreateReviewOncePerBooking(t *testing.T) {
	service, reviews, _, _ := newReviewFixture(models.BookingCompleted)
	reviews.exists = true

	_, err := service.CreateReview(context.Background(), 200, "client", CreateReviewInput{BookingID: 5, Rating: 4})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateReviewValidatesActor(t *testing.T) {
	service, _, _, _ := newReviewFixture(models.BookingCompleted)

	if _, err := service.CreateReview(context.Background(), 200, "caregiver", CreateReviewInput{BookingID: 5, Rating: 4}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for caregivers, got %v", err)
	}
	if _, err := service.CreateReview(context.Background(), 999, "client", CreateReviewInput{BookingID: 5, Rating: 4}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for other clients, got %v", err)
	}
	if _, err := service.CreateReview(context.Background(), 200, "client", CreateReviewInput{BookingID: 5, Rating: 6}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for rating out of range, got %v", err)
	}
}
