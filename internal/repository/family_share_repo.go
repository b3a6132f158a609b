package repository

import (
	"context"

	"github.com/danielagrograos-wq/senior/internal/models"
)

const familyShareColumns = `fs.id, fs.booking_id, fs.inviter_id, u.name, fs.invitee_email, fs.invitee_id, fs.share_percent, fs.amount_cents, fs.status, fs.paid, fs.accepted_at, fs.paid_at, fs.created_at`

const familyShareFrom = ` FROM family_shares fs JOIN users u ON u.id = fs.inviter_id `

type FamilyShareRepository struct {
	db DBTX
}

func NewFamilyShareRepository(db DBTX) *FamilyShareRepository {
	return &FamilyShareRepository{db: db}
}

func (r *FamilyShareRepository) Create(ctx context.Context, bookingID, inviterID int64, inviteeEmail string, sharePercent int, amountCents int64) (*models.FamilyShare, error) {
	query := `
		WITH inserted AS (
			INSERT INTO family_shares (booking_id, inviter_id, invitee_email, share_percent, amount_cents, status, paid)
			VALUES ($1, $2, LOWER($3), $4, $5, 'pending', FALSE)
			RETURNING *
		)
		SELECT ` + familyShareColumns + ` FROM inserted fs JOIN users u ON u.id = fs.inviter_id`

	return scanFamilyShare(r.db.QueryRow(ctx, query, bookingID, inviterID, inviteeEmail, sharePercent, amountCents))
}

func (r *FamilyShareRepository) GetByID(ctx context.Context, id int64) (*models.FamilyShare, error) {
	query := `SELECT ` + familyShareColumns + familyShareFrom + `WHERE fs.id = $1`
	return scanFamilyShare(r.db.QueryRow(ctx, query, id))
}

func (r *FamilyShareRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.FamilyShare, error) {
	query := `SELECT ` + familyShareColumns + familyShareFrom + `WHERE fs.id = $1 FOR UPDATE OF fs`
	return scanFamilyShare(r.db.QueryRow(ctx, query, id))
}

func (r *FamilyShareRepository) ListByBooking(ctx context.Context, bookingID int64) ([]models.FamilyShare, error) {
	query := `SELECT ` + familyShareColumns + familyShareFrom + `WHERE fs.booking_id = $1 ORDER BY fs.created_at ASC, fs.id ASC`
	return r.list(ctx, query, bookingID)
}

// ListPendingForEmail returns open invitations addressed to the given email.
func (r *FamilyShareRepository) ListPendingForEmail(ctx context.Context, email string) ([]models.FamilyShare, error) {
	query := `SELECT ` + familyShareColumns + familyShareFrom + `WHERE fs.invitee_email = LOWER($1) AND fs.status = 'pending' ORDER BY fs.created_at DESC, fs.id DESC`
	return r.list(ctx, query, email)
}

// SumPercentForBooking totals the percentage already handed out for a
// booking, counting every share that has not been declined.
func (r *FamilyShareRepository) SumPercentForBooking(ctx context.Context, bookingID int64) (int, error) {
	var total int
	query := `
		SELECT COALESCE(SUM(share_percent), 0)
		FROM family_shares
		WHERE booking_id = $1 AND status <> 'declined'
	`
	err := r.db.QueryRow(ctx, query, bookingID).Scan(&total)
	return total, err
}

// AcceptIfPending binds the invitee's user id and flips the share to accepted
// in one statement, so a second accept (or someone else's) comes back empty.
func (r *FamilyShareRepository) AcceptIfPending(ctx context.Context, id, inviteeID int64, inviteeEmail string) (*models.FamilyShare, error) {
	query := `
		WITH updated AS (
			UPDATE family_shares
			SET invitee_id = $2, status = 'accepted', accepted_at = NOW()
			WHERE id = $1 AND status = 'pending' AND invitee_email = LOWER($3)
			RETURNING *
		)
		SELECT ` + familyShareColumns + ` FROM updated fs JOIN users u ON u.id = fs.inviter_id`

	return scanFamilyShare(r.db.QueryRow(ctx, query, id, inviteeID, inviteeEmail))
}

func (r *FamilyShareRepository) DeclineIfPending(ctx context.Context, id int64, inviteeEmail string) (*models.FamilyShare, error) {
	query := `
		WITH updated AS (
			UPDATE family_shares
			SET status = 'declined'
			WHERE id = $1 AND status = 'pending' AND invitee_email = LOWER($2)
			RETURNING *
		)
		SELECT ` + familyShareColumns + ` FROM updated fs JOIN users u ON u.id = fs.inviter_id`

	return scanFamilyShare(r.db.QueryRow(ctx, query, id, inviteeEmail))
}

// MarkPaidIfUnpaid records a share payment exactly once.
func (r *FamilyShareRepository) MarkPaidIfUnpaid(ctx context.Context, id int64) (*models.FamilyShare, error) {
	query := `
		WITH updated AS (
			UPDATE family_shares
			SET paid = TRUE, paid_at = NOW()
			WHERE id = $1 AND status = 'accepted' AND paid = FALSE
			RETURNING *
		)
		SELECT ` + familyShareColumns + ` FROM updated fs JOIN users u ON u.id = fs.inviter_id`

	return scanFamilyShare(r.db.QueryRow(ctx, query, id))
}

// CountUnpaid counts shares still standing between the booking and full
// payment. Pending invitations count too, so the promotion cannot fire early.
func (r *FamilyShareRepository) CountUnpaid(ctx context.Context, bookingID int64) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM family_shares
		WHERE booking_id = $1 AND status <> 'declined' AND paid = FALSE
	`
	err := r.db.QueryRow(ctx, query, bookingID).Scan(&count)
	return count, err
}

func (r *FamilyShareRepository) list(ctx context.Context, query string, args ...any) ([]models.FamilyShare, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shares := make([]models.FamilyShare, 0)
	for rows.Next() {
		share, err := scanFamilyShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, *share)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shares, nil
}

func scanFamilyShare(row rowScanner) (*models.FamilyShare, error) {
	var share models.FamilyShare
	err := row.Scan(
		&share.ID,
		&share.BookingID,
		&share.InviterID,
		&share.InviterName,
		&share.InviteeEmail,
		&share.InviteeID,
		&share.SharePercent,
		&share.AmountCents,
		&share.Status,
		&share.Paid,
		&share.AcceptedAt,
		&share.PaidAt,
		&share.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &share, nil
}
