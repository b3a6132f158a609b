package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/repository"
	"github.com/jackc/pgx/v5"
)

// careLogNotificationTitles keys the family-facing push title by entry type.
var careLogNotificationTitles = map[string]string{
	"check_in":    "Cuidador chegou!",
	"check_out":   "Cuidado finalizado",
	"medication":  "Medicação administrada",
	"meal":        "Refeição registrada",
	"vital_signs": "Sinais vitais medidos",
	"activity":    "Atividade realizada",
	"emergency":   "⚠️ EMERGÊNCIA",
}

var validCareLogEntryTypes = map[string]struct{}{
	"check_in":    {},
	"check_out":   {},
	"medication":  {},
	"meal":        {},
	"vital_signs": {},
	"activity":    {},
	"note":        {},
	"emergency":   {},
}

type bookingReader interface {
	GetByID(ctx context.Context, bookingID int64) (*models.Booking, error)
	StampCheckIn(ctx context.Context, bookingID int64) (*models.Booking, error)
	StampCheckOut(ctx context.Context, bookingID int64) (*models.Booking, error)
}

type careLogStore interface {
	Create(ctx context.Context, input repository.CreateCareLogInput) (*models.CareLog, error)
	ListByBooking(ctx context.Context, bookingID int64, ascending bool) ([]models.CareLog, error)
}

type emergencyStore interface {
	Create(ctx context.Context, input repository.CreateEmergencyInput) (*models.Emergency, error)
}

type CareLogService struct {
	careLogRepo   careLogStore
	emergencyRepo emergencyStore
	bookingRepo   bookingReader
	caregiverRepo caregiverProfileReader
	summarizer    Summarizer
	notifier      Notifier
}

func NewCareLogService(
	careLogRepo careLogStore,
	emergencyRepo emergencyStore,
	bookingRepo bookingReader,
	caregiverRepo caregiverProfileReader,
	summarizer Summarizer,
	notifier Notifier,
) *CareLogService {
	return &CareLogService{
		careLogRepo:   careLogRepo,
		emergencyRepo: emergencyRepo,
		bookingRepo:   bookingRepo,
		caregiverRepo: caregiverRepo,
		summarizer:    summarizer,
		notifier:      notifier,
	}
}

type CreateCareLogInput struct {
	BookingID   int64
	EntryType   string
	Description string
	VitalSigns  map[string]any
	PhotoURL    *string
}

// CreateEntry records a care log entry; check-in and check-out also move the
// booking along its lifecycle before the entry is written.
func (s *CareLogService) CreateEntry(
	ctx context.Context,
	actorID int64,
	role string,
	input CreateCareLogInput,
) (*models.CareLog, error) {
	if role != "caregiver" {
		return nil, ErrForbidden
	}
	if _, ok := validCareLogEntryTypes[input.EntryType]; !ok {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, ErrInvalidInput
	}

	booking, profile, err := s.caregiverBooking(ctx, actorID, input.BookingID)
	if err != nil {
		return nil, err
	}

	switch input.EntryType {
	case "check_in":
		if _, err := s.bookingRepo.StampCheckIn(ctx, booking.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrInvalidStateTransition
			}
			return nil, err
		}
	case "check_out":
		if _, err := s.bookingRepo.StampCheckOut(ctx, booking.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrInvalidStateTransition
			}
			return nil, err
		}
	}

	entry, err := s.careLogRepo.Create(ctx, repository.CreateCareLogInput{
		BookingID:   booking.ID,
		CaregiverID: profile.ID,
		EntryType:   input.EntryType,
		Description: input.Description,
		VitalSigns:  input.VitalSigns,
		PhotoURL:    input.PhotoURL,
	})
	if err != nil {
		return nil, err
	}

	title, ok := careLogNotificationTitles[input.EntryType]
	if !ok {
		title = "Atualização de cuidado"
	}
	s.notifier.Notify(booking.ClientID, "care_log_"+input.EntryType,
		title, truncate(input.Description, 100),
		map[string]any{"booking_id": booking.ID, "log_id": entry.ID})

	return entry, nil
}

func (s *CareLogService) ListEntries(
	ctx context.Context,
	actorID int64,
	role string,
	bookingID int64,
) ([]models.CareLog, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeCareLogAccess(ctx, actorID, role, booking); err != nil {
		return nil, err
	}
	return s.careLogRepo.ListByBooking(ctx, bookingID, false)
}

type CareSummary struct {
	Summary      string `json:"summary"`
	TotalEntries int    `json:"total_entries"`
}

// Summarize builds a family-facing summary of the booking's care log. When
// the model call fails the caller still gets a plain count-based fallback.
func (s *CareLogService) Summarize(
	ctx context.Context,
	actorID int64,
	role string,
	bookingID int64,
) (*CareSummary, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeCareLogAccess(ctx, actorID, role, booking); err != nil {
		return nil, err
	}

	entries, err := s.careLogRepo.ListByBooking(ctx, bookingID, true)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return &CareSummary{Summary: "Sem registros de cuidado ainda.", TotalEntries: 0}, nil
	}

	summary, err := s.summarizer.Summarize(ctx, entries)
	if err != nil {
		log.Printf("care summary for booking %d: %v", bookingID, err)
		summary = fmt.Sprintf("Resumo do dia: %d atividades registradas.", len(entries))
	}

	return &CareSummary{Summary: summary, TotalEntries: len(entries)}, nil
}

type EmergencyInput struct {
	BookingID     int64
	EmergencyType string
	Description   string
	LocationLat   *float64
	LocationLng   *float64
}

type EmergencyAck struct {
	EmergencyID           int64  `json:"emergency_id"`
	Message               string `json:"message"`
	EmergencyServicesInfo string `json:"emergency_services_info"`
}

// TriggerEmergency is the caregiver's panic button: it logs the incident,
// writes an emergency care log entry and alerts the family.
func (s *CareLogService) TriggerEmergency(
	ctx context.Context,
	actorID int64,
	role string,
	input EmergencyInput,
) (*EmergencyAck, error) {
	if role != "caregiver" {
		return nil, ErrForbidden
	}
	if input.EmergencyType == "" {
		return nil, ErrInvalidInput
	}

	booking, profile, err := s.caregiverBooking(ctx, actorID, input.BookingID)
	if err != nil {
		return nil, err
	}

	emergency, err := s.emergencyRepo.Create(ctx, repository.CreateEmergencyInput{
		BookingID:     booking.ID,
		CaregiverID:   profile.ID,
		EmergencyType: input.EmergencyType,
		Description:   input.Description,
		LocationLat:   input.LocationLat,
		LocationLng:   input.LocationLng,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.careLogRepo.Create(ctx, repository.CreateCareLogInput{
		BookingID:   booking.ID,
		CaregiverID: profile.ID,
		EntryType:   "emergency",
		Description: fmt.Sprintf("EMERGÊNCIA: %s - %s", input.EmergencyType, input.Description),
	}); err != nil {
		return nil, err
	}

	s.notifier.Notify(booking.ClientID, "emergency",
		"🚨 EMERGÊNCIA MÉDICA",
		fmt.Sprintf("%s: %s. Cuidador: %s", strings.ToUpper(input.EmergencyType), input.Description, booking.CaregiverName),
		map[string]any{
			"emergency_id": emergency.ID,
			"booking_id":   booking.ID,
			"location":     map[string]any{"lat": input.LocationLat, "lng": input.LocationLng},
		})

	return &EmergencyAck{
		EmergencyID:           emergency.ID,
		Message:               "Emergency alert sent to all family members",
		EmergencyServicesInfo: "Ligue 192 (SAMU) ou 193 (Bombeiros)",
	}, nil
}

// caregiverBooking resolves the actor's caregiver profile and checks it owns
// the booking.
func (s *CareLogService) caregiverBooking(ctx context.Context, actorID, bookingID int64) (*models.Booking, *models.CaregiverProfile, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.caregiverRepo.GetByUserID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrForbidden
		}
		return nil, nil, err
	}
	if booking.CaregiverID != profile.ID {
		return nil, nil, ErrForbidden
	}
	return booking, profile, nil
}

func (s *CareLogService) authorizeCareLogAccess(ctx context.Context, actorID int64, role string, booking *models.Booking) error {
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

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
