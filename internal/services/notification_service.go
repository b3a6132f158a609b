package services

import (
	"context"
	"log"
	"time"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/jackc/pgx/v5"
)

// PushSender delivers a notification to a set of device tokens. It returns
// the tokens the gateway reported as dead.
type PushSender interface {
	Send(ctx context.Context, tokens []string, title, message string, data map[string]any) ([]string, error)
}

// RealtimeSender pushes a notification to the user's open sockets.
type RealtimeSender interface {
	SendToUser(userID int64, payload any)
}

type notificationStore interface {
	Create(ctx context.Context, userID int64, notifType, title, message string, data map[string]any) (*models.Notification, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type pushTokenStore interface {
	Upsert(ctx context.Context, userID int64, token, deviceType string) (*models.PushToken, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]models.PushToken, error)
	Deactivate(ctx context.Context, token string) error
	DeactivateForUser(ctx context.Context, userID int64, token string) (int64, error)
}

// NotificationService persists every notification on the caller's goroutine,
// so the record survives even when delivery cannot happen. Only the push and
// websocket fan-out runs off the request path; a full queue drops delivery,
// never the row.
type NotificationService struct {
	notificationRepo notificationStore
	pushTokenRepo    pushTokenStore
	push             PushSender
	realtime         RealtimeSender
	queue            chan *models.Notification
}

func NewNotificationService(
	notificationRepo notificationStore,
	pushTokenRepo pushTokenStore,
	push PushSender,
	realtime RealtimeSender,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		pushTokenRepo:    pushTokenRepo,
		push:             push,
		realtime:         realtime,
		queue:            make(chan *models.Notification, 256),
	}
}

// Notify writes the notification synchronously, then hands delivery to the
// dispatch worker. Persistence uses a detached context so an aborted request
// cannot lose the record.
func (s *NotificationService) Notify(userID int64, notifType, title, message string, data map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notification, err := s.notificationRepo.Create(ctx, userID, notifType, title, message, data)
	if err != nil {
		log.Printf("persist notification for user %d: %v", userID, err)
		return
	}

	select {
	case s.queue <- notification:
	default:
		log.Printf("notification queue full, skipping delivery of %s for user %d", notifType, userID)
	}
}

// Run drains the delivery queue until ctx is cancelled. Call it from a
// goroutine at startup.
func (s *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case notification := <-s.queue:
			s.deliver(ctx, notification)
		}
	}
}

func (s *NotificationService) deliver(ctx context.Context, notification *models.Notification) {
	if s.realtime != nil {
		s.realtime.SendToUser(notification.UserID, notification)
	}

	if s.push == nil {
		return
	}
	tokens, err := s.pushTokenRepo.ListActiveByUser(ctx, notification.UserID)
	if err != nil {
		log.Printf("list push tokens for user %d: %v", notification.UserID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, token := range tokens {
		tokenStrings = append(tokenStrings, token.Token)
	}

	dead, err := s.push.Send(ctx, tokenStrings, notification.Title, notification.Message, notification.Data)
	if err != nil {
		log.Printf("push notification for user %d: %v", notification.UserID, err)
		return
	}
	for _, token := range dead {
		if err := s.pushTokenRepo.Deactivate(ctx, token); err != nil {
			log.Printf("deactivate push token: %v", err)
		}
	}
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notificationRepo.ListByUser(ctx, userID, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.notificationRepo.MarkRead(ctx, notificationID, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) RegisterPushToken(ctx context.Context, userID int64, token, deviceType string) (*models.PushToken, error) {
	if token == "" {
		return nil, ErrInvalidInput
	}
	if deviceType == "" {
		deviceType = "unknown"
	}
	return s.pushTokenRepo.Upsert(ctx, userID, token, deviceType)
}

func (s *NotificationService) UnregisterPushToken(ctx context.Context, userID int64, token string) error {
	if token == "" {
		return ErrInvalidInput
	}
	affected, err := s.pushTokenRepo.DeactivateForUser(ctx, userID, token)
	if err != nil {
		return err
	}
	if affected == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
