package repository

import (
	"context"
	"fmt"

	"github.com/danielagrograos-wq/senior/internal/models"
)

type ClientProfileInput struct {
	ElderName          string
	ElderAge           int
	ElderAddress       string
	ElderCity          string
	CareLevel          string
	PreferredLanguages []string
	HasPets            bool
	ElderHobbies       []string
	PreferredGender    *string
	NeedsDriver        bool
}

const clientColumns = `id, user_id, elder_name, elder_age, elder_address, elder_city,
	care_level, preferred_languages, has_pets, elder_hobbies, preferred_gender,
	needs_driver, created_at, updated_at`

type ClientRepository struct {
	db DBTX
}

func NewClientRepository(db DBTX) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, userID int64, input ClientProfileInput) (*models.ClientProfile, error) {
	query := fmt.Sprintf(`
		INSERT INTO client_profiles (
			user_id, elder_name, elder_age, elder_address, elder_city, care_level,
			preferred_languages, has_pets, elder_hobbies, preferred_gender, needs_driver
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s
	`, clientColumns)

	row := r.db.QueryRow(ctx, query,
		userID,
		input.ElderName,
		input.ElderAge,
		input.ElderAddress,
		input.ElderCity,
		input.CareLevel,
		input.PreferredLanguages,
		input.HasPets,
		input.ElderHobbies,
		input.PreferredGender,
		input.NeedsDriver,
	)
	return scanClientProfile(row)
}

func (r *ClientRepository) GetByUserID(ctx context.Context, userID int64) (*models.ClientProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM client_profiles WHERE user_id = $1`, clientColumns)
	return scanClientProfile(r.db.QueryRow(ctx, query, userID))
}

func (r *ClientRepository) Update(ctx context.Context, userID int64, input ClientProfileInput) (*models.ClientProfile, error) {
	query := fmt.Sprintf(`
		UPDATE client_profiles
		SET elder_name = $1,
			elder_age = $2,
			elder_address = $3,
			elder_city = $4,
			care_level = $5,
			preferred_languages = $6,
			has_pets = $7,
			elder_hobbies = $8,
			preferred_gender = $9,
			needs_driver = $10,
			updated_at = NOW()
		WHERE user_id = $11
		RETURNING %s
	`, clientColumns)

	row := r.db.QueryRow(ctx, query,
		input.ElderName,
		input.ElderAge,
		input.ElderAddress,
		input.ElderCity,
		input.CareLevel,
		input.PreferredLanguages,
		input.HasPets,
		input.ElderHobbies,
		input.PreferredGender,
		input.NeedsDriver,
		userID,
	)
	return scanClientProfile(row)
}

func scanClientProfile(row rowScanner) (*models.ClientProfile, error) {
	var profile models.ClientProfile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.ElderName,
		&profile.ElderAge,
		&profile.ElderAddress,
		&profile.ElderCity,
		&profile.CareLevel,
		&profile.PreferredLanguages,
		&profile.HasPets,
		&profile.ElderHobbies,
		&profile.PreferredGender,
		&profile.NeedsDriver,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
