package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type bookingManager interface {
	CreateBooking(ctx context.Context, actorID int64, role string, input services.CreateBookingInput) (*models.Booking, error)
	ListBookings(ctx context.Context, actorID int64, role string, status string) ([]models.Booking, error)
	GetBooking(ctx context.Context, actorID int64, role string, bookingID int64) (*models.Booking, error)
	UpdateStatus(ctx context.Context, actorID int64, role string, bookingID int64, status string) (*models.Booking, error)
}

type BookingHandler struct {
	bookings bookingManager
}

func NewBookingHandler(bookings bookingManager) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type createBookingRequest struct {
	CaregiverID   int64   `json:"caregiver_id"`
	StartDatetime string  `json:"start_datetime"`
	EndDatetime   string  `json:"end_datetime"`
	ServiceType   string  `json:"service_type"`
	Notes         *string `json:"notes"`
}

func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	start, err := time.Parse(time.RFC3339, req.StartDatetime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_datetime"})
	}
	end, err := time.Parse(time.RFC3339, req.EndDatetime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_datetime"})
	}

	booking, err := h.bookings.CreateBooking(c.Context(), actorID, role, services.CreateBookingInput{
		CaregiverID:   req.CaregiverID,
		StartDatetime: start,
		EndDatetime:   end,
		ServiceType:   req.ServiceType,
		Notes:         req.Notes,
	})
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	bookings, err := h.bookings.ListBookings(c.Context(), actorID, role, c.Query("status"))
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"bookings": bookings})
}

func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	bookingID, err := c.ParamsInt("id")
	if err != nil || bookingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	booking, err := h.bookings.GetBooking(c.Context(), actorID, role, int64(bookingID))
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking})
}

type bookingStatusRequest struct {
	Status string `json:"status"`
}

func (h *BookingHandler) UpdateStatus(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	bookingID, err := c.ParamsInt("id")
	if err != nil || bookingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req bookingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	booking, err := h.bookings.UpdateStatus(c.Context(), actorID, role, int64(bookingID), req.Status)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking})
}

func mapBookingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking request"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not allowed"})
	case errors.Is(err, services.ErrCaregiverNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Caregiver not found"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	case errors.Is(err, services.ErrVerificationExpired):
		return c.Status(fiber.StatusConflict).
			JSON(fiber.Map{"error": "Caregiver background check has expired"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).
			JSON(fiber.Map{"error": "Caregiver already has a booking in this time window"})
	case errors.Is(err, services.ErrProfileRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Complete your profile first"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"error": "Booking cannot move to that status"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Booking operation failed"})
	}
}
