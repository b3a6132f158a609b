package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type paymentManager interface {
	CreateIntent(ctx context.Context, actorID int64, bookingID int64) (*services.PaymentIntent, error)
	Confirm(ctx context.Context, actorID int64, bookingID int64, intentID string) (*models.Booking, error)
	ReleaseEscrow(ctx context.Context, actorID int64, role string, bookingID int64) (*services.EscrowRelease, error)
	History(ctx context.Context, actorID int64, role string) (any, error)
}

type PaymentHandler struct {
	payments paymentManager
}

func NewPaymentHandler(payments paymentManager) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type createIntentRequest struct {
	BookingID int64 `json:"booking_id"`
}

func (h *PaymentHandler) CreateIntent(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.BookingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "booking_id is required"})
	}

	intent, err := h.payments.CreateIntent(c.Context(), actorID, req.BookingID)
	if err != nil {
		return mapPaymentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(intent)
}

type confirmPaymentRequest struct {
	BookingID       int64  `json:"booking_id"`
	PaymentIntentID string `json:"payment_intent_id"`
}

func (h *PaymentHandler) ConfirmPayment(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req confirmPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.BookingID <= 0 || strings.TrimSpace(req.PaymentIntentID) == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "booking_id and payment_intent_id are required"})
	}

	booking, err := h.payments.Confirm(c.Context(), actorID, req.BookingID, req.PaymentIntentID)
	if err != nil {
		return mapPaymentError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking, "status": "succeeded"})
}

func (h *PaymentHandler) ReleaseEscrow(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	bookingID, err := c.ParamsInt("id")
	if err != nil || bookingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	release, err := h.payments.ReleaseEscrow(c.Context(), actorID, role, int64(bookingID))
	if err != nil {
		return mapPaymentError(c, err)
	}

	return c.JSON(release)
}

func (h *PaymentHandler) History(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	history, err := h.payments.History(c.Context(), actorID, role)
	if err != nil {
		return mapPaymentError(c, err)
	}

	return c.JSON(fiber.Map{"history": history})
}

func mapPaymentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment request"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not allowed"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, services.ErrAlreadyPaid):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Booking is already paid"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Payment already processed"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"error": "Booking is not in a payable state"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Payment operation failed"})
	}
}
