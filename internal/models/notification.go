package models

import "time"

type Notification struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"notification_type"`
	Read      bool           `json:"read"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

type PushToken struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Token      string    `json:"push_token"`
	DeviceType string    `json:"device_type"`
	Active     bool      `json:"active"`
	UpdatedAt  time.Time `json:"updated_at"`
}
