package repository

import (
	"context"

	"github.com/danielagrograos-wq/senior/internal/models"
)

type ChatRepository struct {
	db DBTX
}

func NewChatRepository(db DBTX) *ChatRepository {
	return &ChatRepository{db: db}
}

// GetOrCreateRoom returns the room for a client/caregiver pair, creating it
// on first contact. The unique index on (client_id, caregiver_id) makes the
// upsert race-free.
func (r *ChatRepository) GetOrCreateRoom(ctx context.Context, clientID, caregiverID int64, bookingID *int64) (*models.ChatRoom, error) {
	query := `
		INSERT INTO chat_rooms (client_id, caregiver_id, booking_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id, caregiver_id) DO UPDATE SET booking_id = COALESCE(EXCLUDED.booking_id, chat_rooms.booking_id)
		RETURNING id, client_id, caregiver_id, booking_id, last_message, last_message_at, created_at
	`
	return scanChatRoom(r.db.QueryRow(ctx, query, clientID, caregiverID, bookingID))
}

func (r *ChatRepository) GetRoomByID(ctx context.Context, id int64) (*models.ChatRoom, error) {
	query := `
		SELECT id, client_id, caregiver_id, booking_id, last_message, last_message_at, created_at
		FROM chat_rooms
		WHERE id = $1
	`
	return scanChatRoom(r.db.QueryRow(ctx, query, id))
}

func (r *ChatRepository) ListRoomsForUser(ctx context.Context, userID int64) ([]models.ChatRoomSummary, error) {
	query := `
		SELECT cr.id, cr.client_id, cr.caregiver_id, cr.booking_id, cr.last_message, cr.last_message_at, cr.created_at,
			(SELECT COUNT(*) FROM chat_messages m WHERE m.room_id = cr.id AND m.sender_id <> $1 AND m.read = FALSE)
		FROM chat_rooms cr
		WHERE cr.client_id = $1 OR cr.caregiver_id = $1
		ORDER BY cr.last_message_at DESC NULLS LAST, cr.id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]models.ChatRoomSummary, 0)
	for rows.Next() {
		var room models.ChatRoomSummary
		if err := rows.Scan(
			&room.ID,
			&room.ClientID,
			&room.CaregiverID,
			&room.BookingID,
			&room.LastMessage,
			&room.LastMessageAt,
			&room.CreatedAt,
			&room.UnreadCount,
		); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rooms, nil
}

func (r *ChatRepository) CreateMessage(ctx context.Context, roomID, senderID int64, message, messageType string) (*models.ChatMessage, error) {
	query := `
		INSERT INTO chat_messages (room_id, sender_id, message, message_type, read)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id, room_id, sender_id, message, message_type, read, created_at
	`
	var msg models.ChatMessage
	err := r.db.QueryRow(ctx, query, roomID, senderID, message, messageType).Scan(
		&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Message, &msg.MessageType, &msg.Read, &msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *ChatRepository) TouchRoom(ctx context.Context, roomID int64, lastMessage string) error {
	_, err := r.db.Exec(ctx, `UPDATE chat_rooms SET last_message = $2, last_message_at = NOW() WHERE id = $1`, roomID, lastMessage)
	return err
}

func (r *ChatRepository) ListMessages(ctx context.Context, roomID int64, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT m.id, m.room_id, m.sender_id, u.name, m.message, m.message_type, m.read, m.created_at
		FROM chat_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.room_id = $1
		ORDER BY m.created_at ASC, m.id ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.RoomID,
			&msg.SenderID,
			&msg.SenderName,
			&msg.Message,
			&msg.MessageType,
			&msg.Read,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkMessagesRead marks everything the other participant sent as read.
func (r *ChatRepository) MarkMessagesRead(ctx context.Context, roomID, readerID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE chat_messages SET read = TRUE WHERE room_id = $1 AND sender_id <> $2 AND read = FALSE`,
		roomID, readerID)
	return err
}

func scanChatRoom(row rowScanner) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := row.Scan(
		&room.ID,
		&room.ClientID,
		&room.CaregiverID,
		&room.BookingID,
		&room.LastMessage,
		&room.LastMessageAt,
		&room.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}
