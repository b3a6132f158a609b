package models

import "time"

// Booking statuses form a one-way lifecycle; escrow follows the status,
// never the other way around.
const (
	BookingPending    = "pending"
	BookingConfirmed  = "confirmed"
	BookingInProgress = "in_progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"

	EscrowPending  = "pending"
	EscrowHeld     = "held"
	EscrowReleased = "released"
	EscrowRefunded = "refunded"
)

type Booking struct {
	ID               int64      `json:"id"`
	CaregiverID      int64      `json:"caregiver_id"`
	CaregiverUserID  int64      `json:"caregiver_user_id"`
	CaregiverName    string     `json:"caregiver_name"`
	CaregiverPhoto   *string    `json:"caregiver_photo"`
	ClientID         int64      `json:"client_id"`
	ClientName       string     `json:"client_name"`
	ElderName        string     `json:"elder_name"`
	StartDatetime    time.Time  `json:"start_datetime"`
	EndDatetime      time.Time  `json:"end_datetime"`
	Status           string     `json:"status"`
	ServiceType      string     `json:"service_type"`
	PriceCents       int64      `json:"price_cents"`
	PlatformFeeCents int64      `json:"platform_fee_cents"`
	TotalCents       int64      `json:"total_cents"`
	Notes            *string    `json:"notes"`
	Paid             bool       `json:"paid"`
	EscrowStatus     string     `json:"escrow_status"`
	CheckInTime      *time.Time `json:"check_in_time"`
	CheckOutTime     *time.Time `json:"check_out_time"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Payment struct {
	ID              int64      `json:"id"`
	PaymentIntentID string     `json:"payment_intent_id"`
	BookingID       int64      `json:"booking_id"`
	ClientID        int64      `json:"client_id"`
	AmountCents     int64      `json:"amount_cents"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	ConfirmedAt     *time.Time `json:"confirmed_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Payout struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"booking_id"`
	CaregiverID int64     `json:"caregiver_id"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
