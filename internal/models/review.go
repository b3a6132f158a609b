package models

import "time"

type Review struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"booking_id"`
	CaregiverID int64     `json:"caregiver_id"`
	ClientID    int64     `json:"client_id"`
	ClientName  string    `json:"client_name"`
	Rating      int       `json:"rating"`
	Comment     *string   `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}
