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
	"github.com/jackc/pgx/v5"
)

type stubNotificationService struct {
	registerResult *models.PushToken
	registerErr    error
	unregisterErr  error
	markReadErr    error

	lastUserID     int64
	lastToken      string
	lastDeviceType string
	lastMarkReadID int64
}

func (s *stubNotificationService) ListNotifications(_ context.Context, userID int64, limit int) ([]models.Notification, error) {
	s.lastUserID = userID
	return nil, nil
}

func (s *stubNotificationService) UnreadCount(_ context.Context, userID int64) (int, error) {
	s.lastUserID = userID
	return 0, nil
}

func (s *stubNotificationService) MarkRead(_ context.Context, userID, notificationID int64) error {
	s.lastUserID = userID
	s.lastMarkReadID = notificationID
	return s.markReadErr
}

func (s *stubNotificationService) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	s.lastUserID = userID
	return 0, nil
}

func (s *stubNotificationService) RegisterPushToken(_ context.Context, userID int64, token, deviceType string) (*models.PushToken, error) {
	s.lastUserID = userID
	s.lastToken = token
	s.lastDeviceType = deviceType
	return s.registerResult, s.registerErr
}

func (s *stubNotificationService) UnregisterPushToken(_ context.Context, userID int64, token string) error {
	s.lastUserID = userID
	s.lastToken = token
	return s.unregisterErr
}

func newNotificationTestApp(service *stubNotificationService) *fiber.App {
	handler := NewNotificationHandler(service)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		c.Locals("role", "client")
		return c.Next()
	})
	app.Put("/api/v1/notifications/:id/read", handler.MarkRead)
	app.Post("/api/v1/notifications/push-token", handler.RegisterPushToken)
	app.Delete("/api/v1/notifications/push-token", handler.UnregisterPushToken)
	return app
}

func TestRegisterPushTokenReturnsCreated(t *testing.T) {
	service := &stubNotificationService{
		registerResult: &models.PushToken{ID: 1, UserID: 42, Token: "ExponentPushToken[abc]"},
	}
	app := newNotificationTestApp(service)

	body := `{"token":"ExponentPushToken[abc]","device_type":"ios"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/push-token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastUserID != 42 {
		t.Errorf("expected user 42, got %d", service.lastUserID)
	}
	if service.lastDeviceType != "ios" {
		t.Errorf("expected device type ios, got %q", service.lastDeviceType)
	}
}

func TestRegisterPushTokenEmptyTokenReturnsBadRequest(t *testing.T) {
	service := &stubNotificationService{registerErr: services.ErrInvalidInput}
	app := newNotificationTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/push-token", strings.NewReader(`{"token":""}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUnregisterPushTokenReturnsOK(t *testing.T) {
	service := &stubNotificationService{}
	app := newNotificationTestApp(service)

	body := `{"token":"ExponentPushToken[abc]"}`
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/notifications/push-token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastToken != "ExponentPushToken[abc]" {
		t.Errorf("expected token recorded, got %q", service.lastToken)
	}
}

func TestUnregisterUnknownPushTokenReturnsNotFound(t *testing.T) {
	service := &stubNotificationService{unregisterErr: pgx.ErrNoRows}
	app := newNotificationTestApp(service)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/notifications/push-token", strings.NewReader(`{"token":"gone"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestMarkReadUnknownNotificationReturnsNotFound(t *testing.T) {
	service := &stubNotificationService{markReadErr: pgx.ErrNoRows}
	app := newNotificationTestApp(service)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/11/read", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if service.lastMarkReadID != 11 {
		t.Errorf("expected notification 11, got %d", service.lastMarkReadID)
	}
}
