package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielagrograos-wq/senior/internal/models"
)

type CreateCaregiverProfileInput struct {
	UserID          int64
	UserName        string
	Bio             *string
	PriceHour       float64
	PriceNight      *float64
	City            string
	Neighborhood    *string
	ExperienceYears int
	Specializations []string
	Certifications  []string
	Languages       []string
	Hobbies         []string
	HasCar          bool
	AcceptsPets     bool
	Available       bool
}

type UpdateCaregiverProfileInput struct {
	Bio             *string
	PhotoURL        *string
	PriceHour       *float64
	PriceNight      *float64
	City            *string
	Neighborhood    *string
	ExperienceYears *int
	Specializations *[]string
	Certifications  *[]string
	Languages       *[]string
	Hobbies         *[]string
	HasCar          *bool
	AcceptsPets     *bool
	Available       *bool
}

type CaregiverListFilter struct {
	City           string
	Neighborhood   string
	MinPrice       float64
	MaxPrice       float64
	VerifiedOnly   bool
	AvailableOnly  bool
	Specialization string
	MinRating      float64
	Offset         int
	Limit          int
}

const caregiverColumns = `id, user_id, user_name, bio, photo_url, price_hour, price_night,
	city, neighborhood, experience_years, specializations, certifications, languages,
	hobbies, has_car, accepts_pets, available, verified, background_check_status,
	background_check_expiry, rating, total_reviews, created_at, updated_at`

type CaregiverRepository struct {
	db DBTX
}

func NewCaregiverRepository(db DBTX) *CaregiverRepository {
	return &CaregiverRepository{db: db}
}

func (r *CaregiverRepository) Create(ctx context.Context, input CreateCaregiverProfileInput) (*models.CaregiverProfile, error) {
	query := fmt.Sprintf(`
		INSERT INTO caregiver_profiles (
			user_id, user_name, bio, price_hour, price_night, city, neighborhood,
			experience_years, specializations, certifications, languages, hobbies,
			has_car, accepts_pets, available
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING %s
	`, caregiverColumns)

	row := r.db.QueryRow(ctx, query,
		input.UserID,
		input.UserName,
		input.Bio,
		input.PriceHour,
		input.PriceNight,
		input.City,
		input.Neighborhood,
		input.ExperienceYears,
		input.Specializations,
		input.Certifications,
		input.Languages,
		input.Hobbies,
		input.HasCar,
		input.AcceptsPets,
		input.Available,
	)
	return scanCaregiver(row)
}

func (r *CaregiverRepository) GetByID(ctx context.Context, id int64) (*models.CaregiverProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM caregiver_profiles WHERE id = $1`, caregiverColumns)
	return scanCaregiver(r.db.QueryRow(ctx, query, id))
}

func (r *CaregiverRepository) GetByUserID(ctx context.Context, userID int64) (*models.CaregiverProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM caregiver_profiles WHERE user_id = $1`, caregiverColumns)
	return scanCaregiver(r.db.QueryRow(ctx, query, userID))
}

func (r *CaregiverRepository) UpdatePartial(ctx context.Context, userID int64, input UpdateCaregiverProfileInput) (*models.CaregiverProfile, error) {
	query := fmt.Sprintf(`
		UPDATE caregiver_profiles
		SET bio = COALESCE($1, bio),
			photo_url = COALESCE($2, photo_url),
			price_hour = COALESCE($3, price_hour),
			price_night = COALESCE($4, price_night),
			city = COALESCE($5, city),
			neighborhood = COALESCE($6, neighborhood),
			experience_years = COALESCE($7, experience_years),
			specializations = COALESCE($8, specializations),
			certifications = COALESCE($9, certifications),
			languages = COALESCE($10, languages),
			hobbies = COALESCE($11, hobbies),
			has_car = COALESCE($12, has_car),
			accepts_pets = COALESCE($13, accepts_pets),
			available = COALESCE($14, available),
			updated_at = NOW()
		WHERE user_id = $15
		RETURNING %s
	`, caregiverColumns)

	row := r.db.QueryRow(ctx, query,
		input.Bio,
		input.PhotoURL,
		input.PriceHour,
		input.PriceNight,
		input.City,
		input.Neighborhood,
		input.ExperienceYears,
		input.Specializations,
		input.Certifications,
		input.Languages,
		input.Hobbies,
		input.HasCar,
		input.AcceptsPets,
		input.Available,
		userID,
	)
	return scanCaregiver(row)
}

func (r *CaregiverRepository) List(ctx context.Context, filter CaregiverListFilter) ([]models.CaregiverProfile, int, error) {
	args := []any{}
	whereParts := []string{}

	addCondition := func(condition string, value any) {
		args = append(args, value)
		whereParts = append(whereParts, fmt.Sprintf(condition, len(args)))
	}

	if city := strings.TrimSpace(filter.City); city != "" {
		addCondition("city ILIKE '%%' || $%d || '%%'", city)
	}
	if neighborhood := strings.TrimSpace(filter.Neighborhood); neighborhood != "" {
		addCondition("neighborhood ILIKE '%%' || $%d || '%%'", neighborhood)
	}
	if filter.MinPrice > 0 {
		addCondition("price_hour >= $%d", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		addCondition("price_hour <= $%d", filter.MaxPrice)
	}
	if filter.VerifiedOnly {
		whereParts = append(whereParts, "verified = TRUE")
	}
	if filter.AvailableOnly {
		whereParts = append(whereParts, "available = TRUE")
	}
	if spec := strings.TrimSpace(filter.Specialization); spec != "" {
		addCondition("$%d = ANY(specializations)", spec)
	}
	if filter.MinRating > 0 {
		addCondition("rating >= $%d", filter.MinRating)
	}

	whereClause := ""
	if len(whereParts) > 0 {
		whereClause = "WHERE " + strings.Join(whereParts, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM caregiver_profiles %s`, whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM caregiver_profiles
		%s
		ORDER BY rating DESC, total_reviews DESC, id ASC
		LIMIT $%d OFFSET $%d
	`, caregiverColumns, whereClause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := make([]models.CaregiverProfile, 0)
	for rows.Next() {
		profile, err := scanCaregiver(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (r *CaregiverRepository) UpdateRating(ctx context.Context, caregiverID int64, rating float64, totalReviews int) error {
	query := `
		UPDATE caregiver_profiles
		SET rating = $2, total_reviews = $3, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, caregiverID, rating, totalReviews)
	return err
}

func (r *CaregiverRepository) SetVerification(
	ctx context.Context,
	caregiverID int64,
	status string,
	verified bool,
	expiry *time.Time,
) error {
	query := `
		UPDATE caregiver_profiles
		SET background_check_status = $2,
			verified = $3,
			background_check_expiry = COALESCE($4, background_check_expiry),
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, caregiverID, status, verified, expiry)
	return err
}

// SetBackgroundCheckStatus moves only the check status, leaving the verified
// flag for the admin review to decide.
func (r *CaregiverRepository) SetBackgroundCheckStatus(ctx context.Context, caregiverID int64, status string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE caregiver_profiles SET background_check_status = $2, updated_at = NOW() WHERE id = $1`,
		caregiverID, status,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCaregiver(row rowScanner) (*models.CaregiverProfile, error) {
	var profile models.CaregiverProfile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.UserName,
		&profile.Bio,
		&profile.PhotoURL,
		&profile.PriceHour,
		&profile.PriceNight,
		&profile.City,
		&profile.Neighborhood,
		&profile.ExperienceYears,
		&profile.Specializations,
		&profile.Certifications,
		&profile.Languages,
		&profile.Hobbies,
		&profile.HasCar,
		&profile.AcceptsPets,
		&profile.Available,
		&profile.Verified,
		&profile.BackgroundCheckStatus,
		&profile.BackgroundCheckExpiry,
		&profile.Rating,
		&profile.TotalReviews,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
