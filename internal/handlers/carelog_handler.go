package handlers

import (
	"context"
	"errors"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type careLogManager interface {
	CreateEntry(ctx context.Context, actorID int64, role string, input services.CreateCareLogInput) (*models.CareLog, error)
	ListEntries(ctx context.Context, actorID int64, role string, bookingID int64) ([]models.CareLog, error)
	Summarize(ctx context.Context, actorID int64, role string, bookingID int64) (*services.CareSummary, error)
	TriggerEmergency(ctx context.Context, actorID int64, role string, input services.EmergencyInput) (*services.EmergencyAck, error)
}

type CareLogHandler struct {
	careLogs careLogManager
}

func NewCareLogHandler(careLogs careLogManager) *CareLogHandler {
	return &CareLogHandler{careLogs: careLogs}
}

type createCareLogRequest struct {
	EntryType   string         `json:"entry_type"`
	Description string         `json:"description"`
	VitalSigns  map[string]any `json:"vital_signs"`
	PhotoURL    *string        `json:"photo_url"`
}

func (h *CareLogHandler) CreateEntry(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	bookingID, err := c.ParamsInt("id")
	if err != nil || bookingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req createCareLogRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	entry, err := h.careLogs.CreateEntry(c.Context(), actorID, role, services.CreateCareLogInput{
		BookingID:   int64(bookingID),
		EntryType:   req.EntryType,
		Description: req.Description,
		VitalSigns:  req.VitalSigns,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		return mapCareLogError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"entry": entry})
}

func (h *CareLogHandler) ListEntries(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	bookingID, err := c.ParamsInt("id")
	if err != nil || bookingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	entries, err := h.careLogs.ListEntries(c.Context(), actorID, role, int64(bookingID))
	if err != nil {
		return mapCareLogError(c, err)
	}

	return c.JSON(fiber.Map{"entries": entries})
}

func (h *CareLogHandler) GetSummary(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	bookingID, err := c.ParamsInt("id")
	if err != nil || bookingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	summary, err := h.careLogs.Summarize(c.Context(), actorID, role, int64(bookingID))
	if err != nil {
		return mapCareLogError(c, err)
	}

	return c.JSON(summary)
}

type emergencyRequest struct {
	EmergencyType string   `json:"emergency_type"`
	Description   string   `json:"description"`
	LocationLat   *float64 `json:"location_lat"`
	LocationLng   *float64 `json:"location_lng"`
}

func (h *CareLogHandler) TriggerEmergency(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	bookingID, err := c.ParamsInt("id")
	if err != nil || bookingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req emergencyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	ack, err := h.careLogs.TriggerEmergency(c.Context(), actorID, role, services.EmergencyInput{
		BookingID:     int64(bookingID),
		EmergencyType: req.EmergencyType,
		Description:   req.Description,
		LocationLat:   req.LocationLat,
		LocationLng:   req.LocationLng,
	})
	if err != nil {
		return mapCareLogError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ack)
}

func mapCareLogError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid care log request"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not allowed"})
	case errors.Is(err, services.ErrProfileRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Complete your caregiver profile first"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"error": "Booking is not in a state that allows this entry"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Care log operation failed"})
	}
}
