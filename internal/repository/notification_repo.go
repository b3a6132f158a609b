package repository

import (
	"context"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/jackc/pgx/v5"
)

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, userID int64, notifType, title, message string, data map[string]any) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, notification_type, title, message, data, read)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id, user_id, notification_type, title, message, data, read, created_at
	`
	var n models.Notification
	err := r.db.QueryRow(ctx, query, userID, notifType, title, message, data).Scan(
		&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Data, &n.Read, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, notification_type, title, message, data, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Data, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`, userID).Scan(&count)
	return count, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type PushTokenRepository struct {
	db DBTX
}

func NewPushTokenRepository(db DBTX) *PushTokenRepository {
	return &PushTokenRepository{db: db}
}

// Upsert keeps one row per token string, rebinding it to whoever registered
// it last (shared family devices swap accounts).
func (r *PushTokenRepository) Upsert(ctx context.Context, userID int64, token, deviceType string) (*models.PushToken, error) {
	query := `
		INSERT INTO push_tokens (user_id, push_token, device_type, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (push_token) DO UPDATE
			SET user_id = EXCLUDED.user_id, device_type = EXCLUDED.device_type, active = TRUE, updated_at = NOW()
		RETURNING id, user_id, push_token, device_type, active, updated_at
	`
	var pt models.PushToken
	err := r.db.QueryRow(ctx, query, userID, token, deviceType).Scan(
		&pt.ID, &pt.UserID, &pt.Token, &pt.DeviceType, &pt.Active, &pt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pt, nil
}

func (r *PushTokenRepository) ListActiveByUser(ctx context.Context, userID int64) ([]models.PushToken, error) {
	query := `
		SELECT id, user_id, push_token, device_type, active, updated_at
		FROM push_tokens
		WHERE user_id = $1 AND active = TRUE
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := make([]models.PushToken, 0)
	for rows.Next() {
		var pt models.PushToken
		if err := rows.Scan(&pt.ID, &pt.UserID, &pt.Token, &pt.DeviceType, &pt.Active, &pt.UpdatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tokens, nil
}

// Deactivate is used when the push gateway reports a token as dead.
func (r *PushTokenRepository) Deactivate(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `UPDATE push_tokens SET active = FALSE, updated_at = NOW() WHERE push_token = $1`, token)
	return err
}

// DeactivateForUser only touches tokens owned by the caller, so one user
// cannot silence another user's device.
func (r *PushTokenRepository) DeactivateForUser(ctx context.Context, userID int64, token string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE push_tokens SET active = FALSE, updated_at = NOW() WHERE user_id = $1 AND push_token = $2 AND active = TRUE`,
		userID, token,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
