package models

import "time"

type VerificationDocument struct {
	ID          int64      `json:"id"`
	CaregiverID int64      `json:"caregiver_id"`
	DocType     string     `json:"doc_type"`
	DocURL      string     `json:"doc_url"`
	Status      string     `json:"status"`
	ExpiryDate  *time.Time `json:"expiry_date"`
	ReviewNotes *string    `json:"review_notes"`
	CreatedAt   time.Time  `json:"created_at"`
}
