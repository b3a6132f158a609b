package models

import "time"

type ClientProfile struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	ElderName          string    `json:"elder_name"`
	ElderAge           int       `json:"elder_age"`
	ElderAddress       string    `json:"elder_address"`
	ElderCity          string    `json:"elder_city"`
	CareLevel          string    `json:"care_level"`
	PreferredLanguages []string  `json:"preferred_languages"`
	HasPets            bool      `json:"has_pets"`
	ElderHobbies       []string  `json:"elder_hobbies"`
	PreferredGender    *string   `json:"preferred_gender"`
	NeedsDriver        bool      `json:"needs_driver"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
