package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubFamilyShareService struct {
	inviteResult  *models.FamilyShare
	inviteErr     error
	acceptResult  *models.FamilyShare
	acceptErr     error
	payResult     *models.FamilyShare
	payErr        error
	lastActorID   int64
	lastShareID   int64
	lastInvite    services.InviteShareInput
}

func (s *stubFamilyShareService) Invite(_ context.Context, actorID int64, input services.InviteShareInput) (*models.FamilyShare, error) {
	s.lastActorID = actorID
	s.lastInvite = input
	return s.inviteResult, s.inviteErr
}

func (s *stubFamilyShareService) Breakdown(_ context.Context, actorID int64, role string, bookingID int64) (*models.FamilyShareBreakdown, error) {
	return &models.FamilyShareBreakdown{OwnerSharePercent: 100}, nil
}

func (s *stubFamilyShareService) Accept(_ context.Context, actorID int64, shareID int64) (*models.FamilyShare, error) {
	s.lastActorID = actorID
	s.lastShareID = shareID
	return s.acceptResult, s.acceptErr
}

func (s *stubFamilyShareService) Decline(_ context.Context, actorID int64, shareID int64) (*models.FamilyShare, error) {
	s.lastActorID = actorID
	s.lastShareID = shareID
	return s.acceptResult, s.acceptErr
}

func (s *stubFamilyShareService) Pay(_ context.Context, actorID int64, shareID int64) (*models.FamilyShare, error) {
	s.lastActorID = actorID
	s.lastShareID = shareID
	return s.payResult, s.payErr
}

func (s *stubFamilyShareService) ListInvitations(_ context.Context, actorID int64) ([]models.FamilyShare, error) {
	s.lastActorID = actorID
	return nil, nil
}

func newShareTestApp(service *stubFamilyShareService) *fiber.App {
	handler := NewFamilyShareHandler(service)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "7")
		c.Locals("role", "client")
		return c.Next()
	})
	app.Post("/api/v1/family-shares", handler.Invite)
	app.Post("/api/v1/family-shares/:id/accept", handler.Accept)
	app.Post("/api/v1/family-shares/:id/pay", handler.Pay)
	return app
}

func TestInviteShareReturnsCreated(t *testing.T) {
	service := &stubFamilyShareService{
		inviteResult: &models.FamilyShare{ID: 11, BookingID: 5, SharePercent: 30},
	}
	app := newShareTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/family-shares", strings.NewReader(`{
		"booking_id": 5,
		"email": "irmã@example.com",
		"share_percent": 30
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
	if service.lastActorID != 7 {
		t.Fatalf("expected actor 7, got %d", service.lastActorID)
	}
	if service.lastInvite.BookingID != 5 || service.lastInvite.SharePercent != 30 {
		t.Fatalf("unexpected invite input: %+v", service.lastInvite)
	}
}

func TestInviteShareMapsLimitExceeded(t *testing.T) {
	service := &stubFamilyShareService{inviteErr: services.ErrShareLimitExceeded}
	app := newShareTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/family-shares", strings.NewReader(`{
		"booking_id": 5,
		"email": "a@b.com",
		"share_percent": 90
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

func TestAcceptShareMapsStaleInvitation(t *testing.T) {
	service := &stubFamilyShareService{acceptErr: services.ErrInvalidStateTransition}
	app := newShareTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/family-shares/11/accept", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if service.lastShareID != 11 {
		t.Fatalf("expected share 11, got %d", service.lastShareID)
	}
}

func TestPayShareMapsAlreadyPaid(t *testing.T) {
	service := &stubFamilyShareService{payErr: services.ErrConflict}
	app := newShareTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/family-shares/11/pay", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}
