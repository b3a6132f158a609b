package models

import "time"

type CaregiverProfile struct {
	ID                    int64      `json:"id"`
	UserID                int64      `json:"user_id"`
	UserName              string     `json:"user_name"`
	Bio                   *string    `json:"bio"`
	PhotoURL              *string    `json:"photo_url"`
	PriceHour             float64    `json:"price_hour"`
	PriceNight            *float64   `json:"price_night"`
	City                  string     `json:"city"`
	Neighborhood          *string    `json:"neighborhood"`
	ExperienceYears       int        `json:"experience_years"`
	Specializations       []string   `json:"specializations"`
	Certifications        []string   `json:"certifications"`
	Languages             []string   `json:"languages"`
	Hobbies               []string   `json:"hobbies"`
	HasCar                bool       `json:"has_car"`
	AcceptsPets           bool       `json:"accepts_pets"`
	Available             bool       `json:"available"`
	Verified              bool       `json:"verified"`
	BackgroundCheckStatus string     `json:"background_check_status"`
	BackgroundCheckExpiry *time.Time `json:"background_check_expiry"`
	Rating                float64    `json:"rating"`
	TotalReviews          int        `json:"total_reviews"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type CaregiverWithScore struct {
	CaregiverProfile
	MatchScore float64 `json:"match_score"`
}
