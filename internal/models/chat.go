package models

import "time"

type ChatRoom struct {
	ID            int64      `json:"id"`
	ClientID      int64      `json:"client_id"`
	CaregiverID   int64      `json:"caregiver_id"`
	BookingID     *int64     `json:"booking_id"`
	LastMessage   *string    `json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ChatRoomSummary struct {
	ChatRoom
	UnreadCount int `json:"unread_count"`
}

type ChatMessage struct {
	ID          int64     `json:"id"`
	RoomID      int64     `json:"room_id"`
	SenderID    int64     `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	Message     string    `json:"message"`
	MessageType string    `json:"message_type"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
