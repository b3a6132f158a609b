package repository

import (
	"context"

	"github.com/danielagrograos-wq/senior/internal/models"
)

type CreateCareLogInput struct {
	BookingID   int64
	CaregiverID int64
	EntryType   string
	Description string
	VitalSigns  map[string]any
	PhotoURL    *string
}

type CareLogRepository struct {
	db DBTX
}

func NewCareLogRepository(db DBTX) *CareLogRepository {
	return &CareLogRepository{db: db}
}

func (r *CareLogRepository) Create(ctx context.Context, input CreateCareLogInput) (*models.CareLog, error) {
	query := `
		INSERT INTO care_logs (booking_id, caregiver_id, entry_type, description, vital_signs, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, booking_id, caregiver_id, entry_type, description, vital_signs, photo_url, created_at
	`
	var entry models.CareLog
	err := r.db.QueryRow(ctx, query,
		input.BookingID,
		input.CaregiverID,
		input.EntryType,
		input.Description,
		input.VitalSigns,
		input.PhotoURL,
	).Scan(
		&entry.ID,
		&entry.BookingID,
		&entry.CaregiverID,
		&entry.EntryType,
		&entry.Description,
		&entry.VitalSigns,
		&entry.PhotoURL,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *CareLogRepository) ListByBooking(ctx context.Context, bookingID int64, ascending bool) ([]models.CareLog, error) {
	order := "DESC"
	if ascending {
		order = "ASC"
	}
	query := `
		SELECT id, booking_id, caregiver_id, entry_type, description, vital_signs, photo_url, created_at
		FROM care_logs
		WHERE booking_id = $1
		ORDER BY created_at ` + order + `, id ` + order

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.CareLog, 0)
	for rows.Next() {
		var entry models.CareLog
		if err := rows.Scan(
			&entry.ID,
			&entry.BookingID,
			&entry.CaregiverID,
			&entry.EntryType,
			&entry.Description,
			&entry.VitalSigns,
			&entry.PhotoURL,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

type CreateEmergencyInput struct {
	BookingID     int64
	CaregiverID   int64
	EmergencyType string
	Description   string
	LocationLat   *float64
	LocationLng   *float64
}

type EmergencyRepository struct {
	db DBTX
}

func NewEmergencyRepository(db DBTX) *EmergencyRepository {
	return &EmergencyRepository{db: db}
}

func (r *EmergencyRepository) Create(ctx context.Context, input CreateEmergencyInput) (*models.Emergency, error) {
	query := `
		INSERT INTO emergencies (booking_id, caregiver_id, emergency_type, description, location_lat, location_lng, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'active')
		RETURNING id, booking_id, caregiver_id, emergency_type, description, location_lat, location_lng, status, created_at
	`
	var emergency models.Emergency
	err := r.db.QueryRow(ctx, query,
		input.BookingID,
		input.CaregiverID,
		input.EmergencyType,
		input.Description,
		input.LocationLat,
		input.LocationLng,
	).Scan(
		&emergency.ID,
		&emergency.BookingID,
		&emergency.CaregiverID,
		&emergency.EmergencyType,
		&emergency.Description,
		&emergency.LocationLat,
		&emergency.LocationLng,
		&emergency.Status,
		&emergency.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &emergency, nil
}

func (r *EmergencyRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM emergencies WHERE status = 'active'`).Scan(&count)
	return count, err
}
