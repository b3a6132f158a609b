package services

import (
	"context"
	"testing"

	"github.com/danielagrograos-wq/senior/internal/models"
)

type stubNotificationStore struct {
	created []models.Notification
	nextID  int64
}

func (s *stubNotificationStore) Create(_ context.Context, userID int64, notifType, title, message string, data map[string]any) (*models.Notification, error) {
	s.nextID++
	notification := models.Notification{
		ID:      s.nextID,
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    data,
	}
	s.created = append(s.created, notification)
	return &notification, nil
}

func (s *stubNotificationStore) ListByUser(_ context.Context, _ int64, _ int) ([]models.Notification, error) {
	return s.created, nil
}

func (s *stubNotificationStore) CountUnread(_ context.Context, _ int64) (int, error) {
	return len(s.created), nil
}

func (s *stubNotificationStore) MarkRead(_ context.Context, _, _ int64) error { return nil }

func (s *stubNotificationStore) MarkAllRead(_ context.Context, _ int64) (int64, error) {
	return 0, nil
}

type stubPushTokenStore struct{}

func (s *stubPushTokenStore) Upsert(_ context.Context, userID int64, token, deviceType string) (*models.PushToken, error) {
	return &models.PushToken{UserID: userID, Token: token, DeviceType: deviceType, Active: true}, nil
}

func (s *stubPushTokenStore) ListActiveByUser(_ context.Context, _ int64) ([]models.PushToken, error) {
	return nil, nil
}

func (s *stubPushTokenStore) Deactivate(_ context.Context, _ string) error { return nil }

func (s *stubPushTokenStore) DeactivateForUser(_ context.Context, _ int64, _ string) (int64, error) {
	return 1, nil
}

func TestNotifyPersistsWithoutRunningWorker(t *testing.T) {
	store := &stubNotificationStore{}
	service := NewNotificationService(store, &stubPushTokenStore{}, nil, nil)

	service.Notify(1, "booking_confirmed", "Reserva confirmada!", "Sua reserva foi confirmada", nil)

	if len(store.created) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(store.created))
	}
	if store.created[0].UserID != 1 || store.created[0].Type != "booking_confirmed" {
		t.Fatalf("unexpected notification: %+v", store.created[0])
	}
}

func TestNotifyPersistsEveryRecordWhenQueueOverflows(t *testing.T) {
	store := &stubNotificationStore{}
	service := NewNotificationService(store, &stubPushTokenStore{}, nil, nil)

	// Far more events than the delivery queue holds, with no worker draining
	// it. Delivery may drop; the rows must not.
	const events = 300
	for i := 0; i < events; i++ {
		service.Notify(1, "booking_confirmed", "Reserva confirmada!", "Sua reserva foi confirmada", nil)
	}

	if len(store.created) != events {
		t.Fatalf("expected %d persisted notifications, got %d", events, len(store.created))
	}
}
