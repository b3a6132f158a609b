package repository

import (
	"context"

	"github.com/danielagrograos-wq/senior/internal/models"
)

type ReviewRepository struct {
	db DBTX
}

func NewReviewRepository(db DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, bookingID, clientID, caregiverID int64, rating int, comment string) (*models.Review, error) {
	query := `
		INSERT INTO reviews (booking_id, client_id, caregiver_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, booking_id, client_id, caregiver_id, rating, comment, created_at
	`
	var review models.Review
	err := r.db.QueryRow(ctx, query, bookingID, clientID, caregiverID, rating, comment).Scan(
		&review.ID,
		&review.BookingID,
		&review.ClientID,
		&review.CaregiverID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ExistsForBooking(ctx context.Context, bookingID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reviews WHERE booking_id = $1)`, bookingID).Scan(&exists)
	return exists, err
}

func (r *ReviewRepository) ListByCaregiver(ctx context.Context, caregiverID int64, limit, offset int) ([]models.Review, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE caregiver_id = $1`, caregiverID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT r.id, r.booking_id, r.client_id, r.caregiver_id, r.rating, r.comment, r.created_at, u.name
		FROM reviews r
		JOIN users u ON u.id = r.client_id
		WHERE r.caregiver_id = $1
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, caregiverID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reviews := make([]models.Review, 0)
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID,
			&review.BookingID,
			&review.ClientID,
			&review.CaregiverID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
			&review.ClientName,
		); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// AverageForCaregiver returns the mean rating and review count in one trip.
func (r *ReviewRepository) AverageForCaregiver(ctx context.Context, caregiverID int64) (float64, int, error) {
	var avg float64
	var count int
	query := `SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE caregiver_id = $1`
	err := r.db.QueryRow(ctx, query, caregiverID).Scan(&avg, &count)
	return avg, count, err
}
