package repository

import (
	"context"

	"github.com/danielagrograos-wq/senior/internal/models"
)

const paymentColumns = `id, payment_intent_id, booking_id, client_id, amount_cents, currency, status, confirmed_at, created_at`

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, intentID string, bookingID, clientID int64, amountCents int64, currency string) (*models.Payment, error) {
	query := `
		INSERT INTO payments (payment_intent_id, booking_id, client_id, amount_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5, 'requires_payment_method')
		RETURNING ` + paymentColumns

	return scanPayment(r.db.QueryRow(ctx, query, intentID, bookingID, clientID, amountCents, currency))
}

func (r *PaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_intent_id = $1`
	return scanPayment(r.db.QueryRow(ctx, query, intentID))
}

// ConfirmIfPending flips an open intent to succeeded exactly once.
func (r *PaymentRepository) ConfirmIfPending(ctx context.Context, intentID string) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET status = 'succeeded', confirmed_at = NOW()
		WHERE payment_intent_id = $1 AND status = 'requires_payment_method'
		RETURNING ` + paymentColumns

	return scanPayment(r.db.QueryRow(ctx, query, intentID))
}

func (r *PaymentRepository) ListByClient(ctx context.Context, clientID int64) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE client_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]models.Payment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID,
		&p.PaymentIntentID,
		&p.BookingID,
		&p.ClientID,
		&p.AmountCents,
		&p.Currency,
		&p.Status,
		&p.ConfirmedAt,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type PayoutRepository struct {
	db DBTX
}

func NewPayoutRepository(db DBTX) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) Create(ctx context.Context, bookingID, caregiverID int64, amountCents int64) (*models.Payout, error) {
	query := `
		INSERT INTO payouts (booking_id, caregiver_id, amount_cents, status)
		VALUES ($1, $2, $3, 'completed')
		RETURNING id, booking_id, caregiver_id, amount_cents, status, created_at
	`
	var payout models.Payout
	err := r.db.QueryRow(ctx, query, bookingID, caregiverID, amountCents).Scan(
		&payout.ID,
		&payout.BookingID,
		&payout.CaregiverID,
		&payout.AmountCents,
		&payout.Status,
		&payout.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *PayoutRepository) ListByCaregiver(ctx context.Context, caregiverID int64) ([]models.Payout, error) {
	query := `
		SELECT id, booking_id, caregiver_id, amount_cents, status, created_at
		FROM payouts
		WHERE caregiver_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, caregiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payouts := make([]models.Payout, 0)
	for rows.Next() {
		var payout models.Payout
		if err := rows.Scan(&payout.ID, &payout.BookingID, &payout.CaregiverID, &payout.AmountCents, &payout.Status, &payout.CreatedAt); err != nil {
			return nil, err
		}
		payouts = append(payouts, payout)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payouts, nil
}

func (r *PayoutRepository) SumByCaregiver(ctx context.Context, caregiverID int64) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM payouts WHERE caregiver_id = $1 AND status = 'completed'`
	err := r.db.QueryRow(ctx, query, caregiverID).Scan(&total)
	return total, err
}
