package handlers

import (
	"context"
	"errors"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type familyShareManager interface {
	Invite(ctx context.Context, actorID int64, input services.InviteShareInput) (*models.FamilyShare, error)
	Breakdown(ctx context.Context, actorID int64, role string, bookingID int64) (*models.FamilyShareBreakdown, error)
	Accept(ctx context.Context, actorID int64, shareID int64) (*models.FamilyShare, error)
	Decline(ctx context.Context, actorID int64, shareID int64) (*models.FamilyShare, error)
	Pay(ctx context.Context, actorID int64, shareID int64) (*models.FamilyShare, error)
	ListInvitations(ctx context.Context, actorID int64) ([]models.FamilyShare, error)
}

type FamilyShareHandler struct {
	shares familyShareManager
}

func NewFamilyShareHandler(shares familyShareManager) *FamilyShareHandler {
	return &FamilyShareHandler{shares: shares}
}

type inviteShareRequest struct {
	BookingID    int64  `json:"booking_id"`
	Email        string `json:"email"`
	SharePercent int    `json:"share_percent"`
}

func (h *FamilyShareHandler) Invite(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req inviteShareRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	share, err := h.shares.Invite(c.Context(), actorID, services.InviteShareInput{
		BookingID:    req.BookingID,
		Email:        req.Email,
		SharePercent: req.SharePercent,
	})
	if err != nil {
		return mapFamilyShareError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"share": share})
}

func (h *FamilyShareHandler) Breakdown(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	bookingID, err := c.ParamsInt("id")
	if err != nil || bookingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	breakdown, err := h.shares.Breakdown(c.Context(), actorID, role, int64(bookingID))
	if err != nil {
		return mapFamilyShareError(c, err)
	}

	return c.JSON(breakdown)
}

func (h *FamilyShareHandler) Accept(c *fiber.Ctx) error {
	return h.respond(c, h.shares.Accept)
}

func (h *FamilyShareHandler) Decline(c *fiber.Ctx) error {
	return h.respond(c, h.shares.Decline)
}

func (h *FamilyShareHandler) Pay(c *fiber.Ctx) error {
	return h.respond(c, h.shares.Pay)
}

func (h *FamilyShareHandler) respond(
	c *fiber.Ctx,
	op func(ctx context.Context, actorID int64, shareID int64) (*models.FamilyShare, error),
) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	shareID, err := c.ParamsInt("id")
	if err != nil || shareID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid share id"})
	}

	share, err := op(c.Context(), actorID, int64(shareID))
	if err != nil {
		return mapFamilyShareError(c, err)
	}

	return c.JSON(fiber.Map{"share": share})
}

func (h *FamilyShareHandler) ListInvitations(c *fiber.Ctx) error {
	actorID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	invitations, err := h.shares.ListInvitations(c.Context(), actorID)
	if err != nil {
		return mapFamilyShareError(c, err)
	}

	return c.JSON(fiber.Map{"invitations": invitations})
}

func mapFamilyShareError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid share request"})
	case errors.Is(err, services.ErrShareLimitExceeded):
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Shares cannot exceed 100% of the booking"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not allowed"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Share is already paid"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"error": "Invitation is no longer pending"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Share operation failed"})
	}
}
