package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidInput           = errors.New("invalid input")
	ErrCaregiverNotFound      = errors.New("caregiver not found")
	ErrProfileRequired        = errors.New("profile required")
	ErrVerificationExpired    = errors.New("caregiver verification expired")
)

// PlatformFeePercent is the marketplace cut added on top of the caregiver's
// price.
const PlatformFeePercent = 15

type clientProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.ClientProfile, error)
}

type caregiverProfileReader interface {
	GetByID(ctx context.Context, id int64) (*models.CaregiverProfile, error)
	GetByUserID(ctx context.Context, userID int64) (*models.CaregiverProfile, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Notifier records a notification for its owner and hands delivery to a
// background worker. Implementations must not block the caller on delivery.
type Notifier interface {
	Notify(userID int64, notifType, title, message string, data map[string]any)
}

type BookingService struct {
	db            *pgxpool.Pool
	bookingRepo   *repository.BookingRepository
	caregiverRepo caregiverProfileReader
	clientRepo    clientProfileReader
	userRepo      userReader
	notifier      Notifier
}

func NewBookingService(
	db *pgxpool.Pool,
	bookingRepo *repository.BookingRepository,
	caregiverRepo caregiverProfileReader,
	clientRepo clientProfileReader,
	userRepo userReader,
	notifier Notifier,
) *BookingService {
	return &BookingService{
		db:            db,
		bookingRepo:   bookingRepo,
		caregiverRepo: caregiverRepo,
		clientRepo:    clientRepo,
		userRepo:      userRepo,
		notifier:      notifier,
	}
}

type CreateBookingInput struct {
	CaregiverID   int64
	StartDatetime time.Time
	EndDatetime   time.Time
	ServiceType   string
	Notes         *string
}

func (s *BookingService) CreateBooking(
	ctx context.Context,
	actorID int64,
	role string,
	input CreateBookingInput,
) (*models.Booking, error) {
	if role != "client" {
		return nil, ErrForbidden
	}
	if input.CaregiverID <= 0 {
		return nil, ErrInvalidInput
	}
	if !input.EndDatetime.After(input.StartDatetime) {
		return nil, ErrInvalidInput
	}
	switch input.ServiceType {
	case "", "hourly":
		input.ServiceType = "hourly"
	case "night_shift", "recurring":
	default:
		return nil, ErrInvalidInput
	}

	caregiver, err := s.caregiverRepo.GetByID(ctx, input.CaregiverID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCaregiverNotFound
		}
		return nil, err
	}
	if caregiver.BackgroundCheckExpiry != nil && time.Now().UTC().After(*caregiver.BackgroundCheckExpiry) {
		return nil, ErrVerificationExpired
	}

	clientProfile, err := s.clientRepo.GetByUserID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileRequired
		}
		return nil, err
	}

	client, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	priceCents := bookingPriceCents(caregiver, input.ServiceType, input.StartDatetime, input.EndDatetime)
	platformFeeCents := priceCents * PlatformFeePercent / 100

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)

	// Serialize bookings per caregiver so two clients cannot race past the
	// overlap check.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", caregiver.ID); err != nil {
		return nil, err
	}

	overlaps, err := txBookingRepo.HasOverlap(ctx, caregiver.ID, input.StartDatetime.UTC(), input.EndDatetime.UTC())
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, ErrConflict
	}

	booking, err := txBookingRepo.Create(ctx, repository.CreateBookingInput{
		CaregiverID:      caregiver.ID,
		CaregiverUserID:  caregiver.UserID,
		CaregiverName:    caregiver.UserName,
		CaregiverPhoto:   caregiver.PhotoURL,
		ClientID:         actorID,
		ClientName:       client.Name,
		ElderName:        clientProfile.ElderName,
		StartDatetime:    input.StartDatetime.UTC(),
		EndDatetime:      input.EndDatetime.UTC(),
		ServiceType:      input.ServiceType,
		PriceCents:       priceCents,
		PlatformFeeCents: platformFeeCents,
		TotalCents:       priceCents + platformFeeCents,
		Notes:            input.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notifier.Notify(caregiver.UserID, "booking_request",
		"Nova solicitação de cuidado",
		fmt.Sprintf("%s solicitou seus serviços para %s", client.Name, clientProfile.ElderName),
		map[string]any{"booking_id": booking.ID})

	return booking, nil
}

// bookingPriceCents prices a night shift at the caregiver's flat night rate;
// everything else is hourly, prorated by the booked duration.
func bookingPriceCents(caregiver *models.CaregiverProfile, serviceType string, start, end time.Time) int64 {
	if serviceType == "night_shift" && caregiver.PriceNight != nil && *caregiver.PriceNight > 0 {
		return int64(*caregiver.PriceNight * 100)
	}
	hours := end.Sub(start).Hours()
	return int64(hours * caregiver.PriceHour * 100)
}

func (s *BookingService) ListBookings(
	ctx context.Context,
	actorID int64,
	role string,
	status string,
) ([]models.Booking, error) {
	filter := repository.BookingListFilter{Status: status}
	switch role {
	case "client":
		filter.ClientID = actorID
	case "caregiver":
		profile, err := s.caregiverRepo.GetByUserID(ctx, actorID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return []models.Booking{}, nil
			}
			return nil, err
		}
		filter.CaregiverID = profile.ID
	default:
		return nil, ErrForbidden
	}

	return s.bookingRepo.List(ctx, filter)
}

func (s *BookingService) GetBooking(
	ctx context.Context,
	actorID int64,
	role string,
	bookingID int64,
) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeBookingAccess(ctx, actorID, role, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) authorizeBookingAccess(
	ctx context.Context,
	actorID int64,
	role string,
	booking *models.Booking,
) error {
	switch role {
	case "client":
		if booking.ClientID != actorID {
			return ErrForbidden
		}
	case "caregiver":
		if booking.CaregiverUserID != actorID {
			return ErrForbidden
		}
	case "admin":
	default:
		return ErrForbidden
	}
	return nil
}

func (s *BookingService) UpdateStatus(
	ctx context.Context,
	actorID int64,
	role string,
	bookingID int64,
	requestedStatus string,
) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeBookingAccess(ctx, actorID, role, booking); err != nil {
		return nil, err
	}

	nextStatus, err := normalizeBookingStatus(requestedStatus)
	if err != nil {
		return nil, err
	}
	if err := validateBookingTransition(role, booking, nextStatus); err != nil {
		return nil, err
	}

	updated, err := s.bookingRepo.UpdateStatusIfCurrent(ctx, bookingID, booking.Status, nextStatus, escrowStatusFor(nextStatus))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	s.notifyStatusChange(updated, nextStatus)

	return updated, nil
}

// escrowStatusFor mirrors the lifecycle on the escrow side. Empty means
// leave the escrow column untouched.
func escrowStatusFor(status string) string {
	switch status {
	case models.BookingConfirmed:
		return models.EscrowHeld
	case models.BookingCompleted:
		return models.EscrowReleased
	case models.BookingCancelled:
		return models.EscrowRefunded
	default:
		return ""
	}
}

func (s *BookingService) notifyStatusChange(booking *models.Booking, status string) {
	data := map[string]any{"booking_id": booking.ID}
	switch status {
	case models.BookingConfirmed:
		s.notifier.Notify(booking.ClientID, "booking_confirmed",
			"Agendamento confirmado!",
			fmt.Sprintf("%s aceitou cuidar de %s", booking.CaregiverName, booking.ElderName),
			data)
	case models.BookingCompleted:
		s.notifier.Notify(booking.ClientID, "booking_completed",
			"Cuidado finalizado",
			fmt.Sprintf("O atendimento de %s foi concluído", booking.ElderName),
			data)
	case models.BookingCancelled:
		s.notifier.Notify(booking.ClientID, "booking_cancelled",
			"Agendamento cancelado",
			fmt.Sprintf("O agendamento para %s foi cancelado", booking.ElderName),
			data)
		s.notifier.Notify(booking.CaregiverUserID, "booking_cancelled",
			"Agendamento cancelado",
			fmt.Sprintf("O agendamento para %s foi cancelado", booking.ElderName),
			data)
	}
}

func normalizeBookingStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "confirm", "confirmed":
		return models.BookingConfirmed, nil
	case "in_progress":
		return models.BookingInProgress, nil
	case "complete", "completed":
		return models.BookingCompleted, nil
	case "cancel", "cancelled", "canceled":
		return models.BookingCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

func validateBookingTransition(role string, booking *models.Booking, nextStatus string) error {
	switch role {
	case "client":
		if nextStatus != models.BookingCancelled {
			return ErrForbidden
		}
		if booking.Status == models.BookingCompleted || booking.Status == models.BookingCancelled {
			return ErrInvalidStateTransition
		}
		return nil
	case "caregiver":
		switch nextStatus {
		case models.BookingConfirmed:
			if booking.Status != models.BookingPending {
				return ErrInvalidStateTransition
			}
		case models.BookingInProgress:
			if booking.Status != models.BookingConfirmed {
				return ErrInvalidStateTransition
			}
		case models.BookingCompleted:
			if booking.Status != models.BookingConfirmed && booking.Status != models.BookingInProgress {
				return ErrInvalidStateTransition
			}
		case models.BookingCancelled:
			if booking.Status == models.BookingCompleted || booking.Status == models.BookingCancelled {
				return ErrInvalidStateTransition
			}
		default:
			return ErrInvalidStatus
		}
		return nil
	default:
		return ErrForbidden
	}
}
