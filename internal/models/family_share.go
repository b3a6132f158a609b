package models

import "time"

type FamilyShare struct {
	ID           int64      `json:"id"`
	BookingID    int64      `json:"booking_id"`
	InviterID    int64      `json:"inviter_id"`
	InviterName  string     `json:"inviter_name"`
	InviteeEmail string     `json:"invitee_email"`
	InviteeID    *int64     `json:"invitee_id"`
	SharePercent int        `json:"share_percent"`
	AmountCents  int64      `json:"amount_cents"`
	Status       string     `json:"status"`
	Paid         bool       `json:"paid"`
	AcceptedAt   *time.Time `json:"accepted_at"`
	PaidAt       *time.Time `json:"paid_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FamilyShareBreakdown is the read-side view of a booking's cost split. The
// owner remainder is derived, never stored.
type FamilyShareBreakdown struct {
	Shares            []FamilyShare `json:"shares"`
	OwnerSharePercent int           `json:"owner_share_percent"`
	OwnerAmountCents  int64         `json:"owner_amount_cents"`
	TotalCents        int64         `json:"total_cents"`
}
