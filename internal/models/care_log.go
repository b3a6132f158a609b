package models

import "time"

type CareLog struct {
	ID          int64          `json:"id"`
	BookingID   int64          `json:"booking_id"`
	CaregiverID int64          `json:"caregiver_id"`
	EntryType   string         `json:"entry_type"`
	Description string         `json:"description"`
	VitalSigns  map[string]any `json:"vital_signs,omitempty"`
	PhotoURL    *string        `json:"photo_url"`
	CreatedAt   time.Time      `json:"created_at"`
}

type Emergency struct {
	ID            int64     `json:"id"`
	BookingID     int64     `json:"booking_id"`
	CaregiverID   int64     `json:"caregiver_id"`
	EmergencyType string    `json:"emergency_type"`
	Description   string    `json:"description"`
	LocationLat   *float64  `json:"location_lat"`
	LocationLng   *float64  `json:"location_lng"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
