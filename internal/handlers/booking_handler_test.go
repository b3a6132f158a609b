package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubBookingService struct {
	createResult *models.Booking
	createErr    error
	listResult   []models.Booking
	listErr      error
	getResult    *models.Booking
	getErr       error
	updateResult *models.Booking
	updateErr    error

	lastActorID     int64
	lastRole        string
	lastBookingID   int64
	lastStatus      string
	lastListStatus  string
	lastCreateInput services.CreateBookingInput
}

func (s *stubBookingService) CreateBooking(_ context.Context, actorID int64, role string, input services.CreateBookingInput) (*models.Booking, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastCreateInput = input
	return s.createResult, s.createErr
}

func (s *stubBookingService) ListBookings(_ context.Context, actorID int64, role string, status string) ([]models.Booking, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastListStatus = status
	return s.listResult, s.listErr
}

func (s *stubBookingService) GetBooking(_ context.Context, actorID int64, role string, bookingID int64) (*models.Booking, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastBookingID = bookingID
	return s.getResult, s.getErr
}

func (s *stubBookingService) UpdateStatus(_ context.Context, actorID int64, role string, bookingID int64, status string) (*models.Booking, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastBookingID = bookingID
	s.lastStatus = status
	return s.updateResult, s.updateErr
}

func newBookingTestApp(service *stubBookingService, role string) *fiber.App {
	handler := NewBookingHandler(service)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		c.Locals("role", role)
		return c.Next()
	})
	app.Post("/api/v1/bookings", handler.CreateBooking)
	app.Get("/api/v1/bookings", handler.ListBookings)
	app.Get("/api/v1/bookings/:id", handler.GetBooking)
	app.Put("/api/v1/bookings/:id/status", handler.UpdateStatus)
	return app
}

func TestCreateBookingReturnsCreated(t *testing.T) {
	service := &stubBookingService{
		createResult: &models.Booking{ID: 9, CaregiverID: 3, ClientID: 42, Status: "pending"},
	}
	app := newBookingTestApp(service, "client")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{
		"caregiver_id": 3,
		"start_datetime": "2026-09-10T08:00:00Z",
		"end_datetime": "2026-09-10T12:00:00Z",
		"service_type": "hourly"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastActorID != 42 || service.lastRole != "client" {
		t.Fatalf("unexpected actor %d role %q", service.lastActorID, service.lastRole)
	}
	if service.lastCreateInput.CaregiverID != 3 {
		t.Fatalf("expected caregiver id 3, got %d", service.lastCreateInput.CaregiverID)
	}
	if service.lastCreateInput.ServiceType != "hourly" {
		t.Fatalf("expected hourly service, got %q", service.lastCreateInput.ServiceType)
	}
}

func TestCreateBookingRejectsBadDatetime(t *testing.T) {
	service := &stubBookingService{}
	app := newBookingTestApp(service, "client")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{
		"caregiver_id": 3,
		"start_datetime": "tomorrow morning",
		"end_datetime": "2026-09-10T12:00:00Z"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateBookingMapsOverlapToConflict(t *testing.T) {
	service := &stubBookingService{createErr: services.ErrConflict}
	app := newBookingTestApp(service, "client")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{
		"caregiver_id": 3,
		"start_datetime": "2026-09-10T08:00:00Z",
		"end_datetime": "2026-09-10T12:00:00Z"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestUpdateStatusMapsInvalidTransition(t *testing.T) {
	service := &stubBookingService{updateErr: services.ErrInvalidStateTransition}
	app := newBookingTestApp(service, "caregiver")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/bookings/9/status", strings.NewReader(`{"status": "completed"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if service.lastBookingID != 9 || service.lastStatus != "completed" {
		t.Fatalf("unexpected booking %d status %q", service.lastBookingID, service.lastStatus)
	}
}

func TestListBookingsPassesStatusFilter(t *testing.T) {
	service := &stubBookingService{
		listResult: []models.Booking{{ID: 1, Status: "confirmed"}},
	}
	app := newBookingTestApp(service, "caregiver")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?status=confirmed", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastListStatus != "confirmed" {
		t.Fatalf("expected status filter confirmed, got %q", service.lastListStatus)
	}

	var body struct {
		Bookings []models.Booking `json:"bookings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Bookings) != 1 || body.Bookings[0].ID != 1 {
		t.Fatalf("unexpected bookings payload: %+v", body.Bookings)
	}
}
