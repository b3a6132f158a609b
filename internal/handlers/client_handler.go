package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var validCareLevels = map[string]bool{
	"companionship": true,
	"mobility":      true,
	"medical":       true,
	"alzheimer":     true,
	"post_surgery":  true,
}

type clientProfileWriter interface {
	Create(ctx context.Context, userID int64, input repository.ClientProfileInput) (*models.ClientProfile, error)
	GetByUserID(ctx context.Context, userID int64) (*models.ClientProfile, error)
	Update(ctx context.Context, userID int64, input repository.ClientProfileInput) (*models.ClientProfile, error)
}

type ClientHandler struct {
	clientRepo clientProfileWriter
}

func NewClientHandler(clientRepo clientProfileWriter) *ClientHandler {
	return &ClientHandler{clientRepo: clientRepo}
}

type clientProfileRequest struct {
	ElderName          string   `json:"elder_name"`
	ElderAge           int      `json:"elder_age"`
	ElderAddress       string   `json:"elder_address"`
	ElderCity          string   `json:"elder_city"`
	CareLevel          string   `json:"care_level"`
	PreferredLanguages []string `json:"preferred_languages"`
	HasPets            bool     `json:"has_pets"`
	ElderHobbies       []string `json:"elder_hobbies"`
	PreferredGender    *string  `json:"preferred_gender"`
	NeedsDriver        bool     `json:"needs_driver"`
}

func (r *clientProfileRequest) validate() string {
	if strings.TrimSpace(r.ElderName) == "" {
		return "elder_name is required"
	}
	if r.ElderAge <= 0 || r.ElderAge > 130 {
		return "elder_age must be between 1 and 130"
	}
	if !validCareLevels[r.CareLevel] {
		return "Invalid care_level"
	}
	return ""
}

func (r *clientProfileRequest) toInput() repository.ClientProfileInput {
	return repository.ClientProfileInput{
		ElderName:          strings.TrimSpace(r.ElderName),
		ElderAge:           r.ElderAge,
		ElderAddress:       strings.TrimSpace(r.ElderAddress),
		ElderCity:          strings.TrimSpace(r.ElderCity),
		CareLevel:          r.CareLevel,
		PreferredLanguages: r.PreferredLanguages,
		HasPets:            r.HasPets,
		ElderHobbies:       r.ElderHobbies,
		PreferredGender:    r.PreferredGender,
		NeedsDriver:        r.NeedsDriver,
	}
}

func (h *ClientHandler) CreateProfile(c *fiber.Ctx) error {
	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	if role, _ := c.Locals("role").(string); role != "client" {
		return c.Status(fiber.StatusForbidden).
			JSON(fiber.Map{"error": "Only clients can create a care profile"})
	}

	var req clientProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	profile, err := h.clientRepo.Create(c.Context(), userID, req.toInput())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Profile already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create profile"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"profile": profile})
}

func (h *ClientHandler) GetMyProfile(c *fiber.Ctx) error {
	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.clientRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ClientHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req clientProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	profile, err := h.clientRepo.Update(c.Context(), userID, req.toInput())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"profile": profile})
}
