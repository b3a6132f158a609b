package services

import (
	"context"
	"errors"
	"testing"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/repository"
	"github.com/jackc/pgx/v5"
)

type stubBookingReader struct {
	booking      *models.Booking
	checkInErr   error
	checkedIn    bool
	checkedOut   bool
	checkOutErr  error
	getByIDCalls int
}

func (s *stubBookingReader) GetByID(_ context.Context, _ int64) (*models.Booking, error) {
	s.getByIDCalls++
	if s.booking == nil {
		return nil, pgx.ErrNoRows
	}
	return s.booking, nil
}

func (s *stubBookingReader) StampCheckIn(_ context.Context, _ int64) (*models.Booking, error) {
	if s.checkInErr != nil {
		return nil, s.checkInErr
	}
	s.checkedIn = true
	return s.booking, nil
}

func (s *stubBookingReader) StampCheckOut(_ context.Context, _ int64) (*models.Booking, error) {
	if s.checkOutErr != nil {
		return nil, s.checkOutErr
	}
	s.checkedOut = true
	return s.booking, nil
}

type stubCareLogStore struct {
	entries []models.CareLog
	created []repository.CreateCareLogInput
}

func (s *stubCareLogStore) Create(_ context.Context, input repository.CreateCareLogInput) (*models.CareLog, error) {
	s.created = append(s.created, input)
	return &models.CareLog{
		ID:          int64(len(s.created)),
		BookingID:   input.BookingID,
		CaregiverID: input.CaregiverID,
		EntryType:   input.EntryType,
		Description: input.Description,
	}, nil
}

func (s *stubCareLogStore) ListByBooking(_ context.Context, _ int64, _ bool) ([]models.CareLog, error) {
	return s.entries, nil
}

type stubEmergencyStore struct {
	created []repository.CreateEmergencyInput
}

func (s *stubEmergencyStore) Create(_ context.Context, input repository.CreateEmergencyInput) (*models.Emergency, error) {
	s.created = append(s.created, input)
	return &models.Emergency{ID: 77, BookingID: input.BookingID, EmergencyType: input.EmergencyType, Status: "active"}, nil
}

type stubCaregiverReader struct {
	profile *models.CaregiverProfile
}

func (s *stubCaregiverReader) GetByID(_ context.Context, _ int64) (*models.CaregiverProfile, error) {
	if s.profile == nil {
		return nil, pgx.ErrNoRows
	}
	return s.profile, nil
}

func (s *stubCaregiverReader) GetByUserID(_ context.Context, _ int64) (*models.CaregiverProfile, error) {
	if s.profile == nil {
		return nil, pgx.ErrNoRows
	}
	return s.profile, nil
}

type stubSummarizer struct {
	summary string
	err     error
}

func (s *stubSummarizer) Summarize(_ context.Context, _ []models.CareLog) (string, error) {
	return s.summary, s.err
}

type recordedNotification struct {
	UserID  int64
	Type    string
	Title   string
	Message string
}

type stubNotifier struct {
	sent []recordedNotification
}

func (s *stubNotifier) Notify(userID int64, notifType, title, message string, _ map[string]any) {
	s.sent = append(s.sent, recordedNotification{UserID: userID, Type: notifType, Title: title, Message: message})
}

func newCareLogFixture() (*CareLogService, *stubBookingReader, *stubCareLogStore, *stubEmergencyStore, *stubNotifier, *stubSummarizer) {
	bookings := &stubBookingReader{booking: &models.Booking{
		ID:              5,
		CaregiverID:     9,
		CaregiverUserID: 100,
		CaregiverName:   "Maria Silva",
		ClientID:        200,
		Status:          models.BookingConfirmed,
	}}
	logs := &stubCareLogStore{}
	emergencies := &stubEmergencyStore{}
	notifier := &stubNotifier{}
	summarizer := &stubSummarizer{summary: "Dia tranquilo."}
	caregivers := &stubCaregiverReader{profile: &models.CaregiverProfile{ID: 9, UserID: 100}}
	service := NewCareLogService(logs, emergencies, bookings, caregivers, summarizer, notifier)
	return service, bookings, logs, emergencies, notifier, summarizer
}

func TestCreateEntryCheckInStampsBookingAndNotifies(t *testing.T) {
	service, bookings, logs, _, notifier, _ := newCareLogFixture()

	entry, err := service.CreateEntry(context.Background(), 100, "caregiver", CreateCareLogInput{
		BookingID:   5,
		EntryType:   "check_in",
		Description: "Cheguei na casa da dona Ana",
	})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if !bookings.checkedIn {
		t.Fatal("expected check-in to stamp the booking")
	}
	if entry.EntryType != "check_in" {
		t.Fatalf("unexpected entry type %q", entry.EntryType)
	}
	if len(logs.created) != 1 || logs.created[0].CaregiverID != 9 {
		t.Fatalf("expected one entry bound to caregiver profile 9, got %+v", logs.created)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Title != "Cuidador chegou!" || notifier.sent[0].UserID != 200 {
		t.Fatalf("expected family check-in notification, got %+v", notifier.sent)
	}
}

func TestCreateEntryCheckInFromFinishedBookingFails(t *testing.T) {
	service, bookings, logs, _, _, _ := newCareLogFixture()
	bookings.checkInErr = pgx.ErrNoRows

	_, err := service.CreateEntry(context.Background(), 100, "caregiver", CreateCareLogInput{
		BookingID:   5,
		EntryType:   "check_in",
		Description: "x",
	})
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
	if len(logs.created) != 0 {
		t.Fatal("no entry should be written when the stamp fails")
	}
}

func TestCreateEntryRejectsUnknownTypeAndRole(t *testing.T) {
	service, _, _, _, _, _ := newCareLogFixture()

	if _, err := service.CreateEntry(context.Background(), 100, "client", CreateCareLogInput{
		BookingID: 5, EntryType: "note", Description: "x",
	}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for clients, got %v", err)
	}
	if _, err := service.CreateEntry(context.Background(), 100, "caregiver", CreateCareLogInput{
		BookingID: 5, EntryType: "nap", Description: "x",
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown entry type, got %v", err)
	}
}

func TestSummarizeFallsBackWhenModelFails(t *testing.T) {
	service, _, logs, _, _, summarizer := newCareLogFixture()
	logs.entries = []models.CareLog{
		{EntryType: "meal", Description: "Almoço completo"},
		{EntryType: "medication", Description: "Losartana 50mg"},
	}
	summarizer.err = errors.New("model unavailable")

	summary, err := service.Summarize(context.Background(), 200, "client", 5)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.TotalEntries != 2 {
		t.Fatalf("expected 2 entries, got %d", summary.TotalEntries)
	}
	if summary.Summary != "Resumo do dia: 2 atividades registradas." {
		t.Fatalf("unexpected fallback summary %q", summary.Summary)
	}
}

func TestSummarizeEmptyLogNeedsNoModel(t *testing.T) {
	service, _, _, _, _, summarizer := newCareLogFixture()
	summarizer.err = errors.New("should not be called")

	summary, err := service.Summarize(context.Background(), 200, "client", 5)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Summary != "Sem registros de cuidado ainda." {
		t.Fatalf("unexpected empty summary %q", summary.Summary)
	}
}

func TestTriggerEmergencyLogsAndAlertsFamily(t *testing.T) {
	service, _, logs, emergencies, notifier, _ := newCareLogFixture()

	ack, err := service.TriggerEmergency(context.Background(), 100, "caregiver", EmergencyInput{
		BookingID:     5,
		EmergencyType: "queda",
		Description:   "Queda no banheiro",
	})
	if err != nil {
		t.Fatalf("TriggerEmergency: %v", err)
	}
	if ack.EmergencyID != 77 {
		t.Fatalf("unexpected emergency id %d", ack.EmergencyID)
	}
	if len(emergencies.created) != 1 {
		t.Fatalf("expected emergency record, got %d", len(emergencies.created))
	}
	if len(logs.created) != 1 || logs.created[0].EntryType != "emergency" {
		t.Fatalf("expected emergency care log entry, got %+v", logs.created)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Type != "emergency" || notifier.sent[0].UserID != 200 {
		t.Fatalf("expected family emergency alert, got %+v", notifier.sent)
	}
}
