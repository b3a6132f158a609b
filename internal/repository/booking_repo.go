package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielagrograos-wq/senior/internal/models"
)

type CreateBookingInput struct {
	CaregiverID      int64
	CaregiverUserID  int64
	CaregiverName    string
	CaregiverPhoto   *string
	ClientID         int64
	ClientName       string
	ElderName        string
	StartDatetime    time.Time
	EndDatetime      time.Time
	ServiceType      string
	PriceCents       int64
	PlatformFeeCents int64
	TotalCents       int64
	Notes            *string
}

type BookingListFilter struct {
	ClientID    int64
	CaregiverID int64
	Status      string
}

const bookingColumns = `id, caregiver_id, caregiver_user_id, caregiver_name, caregiver_photo,
	client_id, client_name, elder_name, start_datetime, end_datetime, status, service_type,
	price_cents, platform_fee_cents, total_cents, notes, paid, escrow_status,
	check_in_time, check_out_time, created_at, updated_at`

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	query := fmt.Sprintf(`
		INSERT INTO bookings (
			caregiver_id, caregiver_user_id, caregiver_name, caregiver_photo,
			client_id, client_name, elder_name, start_datetime, end_datetime,
			service_type, price_cents, platform_fee_cents, total_cents, notes,
			status, escrow_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 'pending', 'pending')
		RETURNING %s
	`, bookingColumns)

	row := r.db.QueryRow(ctx, query,
		input.CaregiverID,
		input.CaregiverUserID,
		input.CaregiverName,
		input.CaregiverPhoto,
		input.ClientID,
		input.ClientName,
		input.ElderName,
		input.StartDatetime,
		input.EndDatetime,
		input.ServiceType,
		input.PriceCents,
		input.PlatformFeeCents,
		input.TotalCents,
		input.Notes,
	)
	return scanBooking(row)
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1 FOR UPDATE`, bookingColumns)
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

func (r *BookingRepository) List(ctx context.Context, filter BookingListFilter) ([]models.Booking, error) {
	args := []any{}
	whereParts := []string{}

	if filter.ClientID > 0 {
		args = append(args, filter.ClientID)
		whereParts = append(whereParts, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.CaregiverID > 0 {
		args = append(args, filter.CaregiverID)
		whereParts = append(whereParts, fmt.Sprintf("caregiver_id = $%d", len(args)))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	whereClause := ""
	if len(whereParts) > 0 {
		whereClause = "WHERE " + strings.Join(whereParts, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		%s
		ORDER BY created_at DESC, id DESC
	`, bookingColumns, whereClause)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

// UpdateStatusIfCurrent performs the lifecycle transition as a conditional
// update so a concurrent transition on the same booking loses cleanly.
func (r *BookingRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	bookingID int64,
	currentStatus string,
	nextStatus string,
	escrowStatus string,
) (*models.Booking, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET status = $3,
			escrow_status = COALESCE(NULLIF($4, ''), escrow_status),
			updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, bookingColumns)
	return scanBooking(r.db.QueryRow(ctx, query, bookingID, currentStatus, nextStatus, escrowStatus))
}

// StampCheckIn flips the booking into in_progress; it only succeeds while the
// booking is still pending or confirmed.
func (r *BookingRepository) StampCheckIn(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET check_in_time = NOW(), status = 'in_progress', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'confirmed')
		RETURNING %s
	`, bookingColumns)
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

// StampCheckOut records the check-out time without touching the status.
func (r *BookingRepository) StampCheckOut(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET check_out_time = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'in_progress'
		RETURNING %s
	`, bookingColumns)
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

func (r *BookingRepository) MarkPaidIfUnpaid(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET paid = TRUE, escrow_status = 'held', updated_at = NOW()
		WHERE id = $1 AND paid = FALSE
		RETURNING %s
	`, bookingColumns)
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

// ReleaseEscrowIfHeld guards the payout precondition (completed + held)
// atomically with the escrow flip.
func (r *BookingRepository) ReleaseEscrowIfHeld(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET escrow_status = 'released', updated_at = NOW()
		WHERE id = $1 AND status = 'completed' AND escrow_status = 'held'
		RETURNING %s
	`, bookingColumns)
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

func (r *BookingRepository) HasOverlap(
	ctx context.Context,
	caregiverID int64,
	start time.Time,
	end time.Time,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM bookings
			WHERE caregiver_id = $1
			  AND status <> 'cancelled'
			  AND start_datetime < $3
			  AND end_datetime > $2
		)
	`
	var overlaps bool
	if err := r.db.QueryRow(ctx, query, caregiverID, start, end).Scan(&overlaps); err != nil {
		return false, err
	}
	return overlaps, nil
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var booking models.Booking
	err := row.Scan(
		&booking.ID,
		&booking.CaregiverID,
		&booking.CaregiverUserID,
		&booking.CaregiverName,
		&booking.CaregiverPhoto,
		&booking.ClientID,
		&booking.ClientName,
		&booking.ElderName,
		&booking.StartDatetime,
		&booking.EndDatetime,
		&booking.Status,
		&booking.ServiceType,
		&booking.PriceCents,
		&booking.PlatformFeeCents,
		&booking.TotalCents,
		&booking.Notes,
		&booking.Paid,
		&booking.EscrowStatus,
		&booking.CheckInTime,
		&booking.CheckOutTime,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
