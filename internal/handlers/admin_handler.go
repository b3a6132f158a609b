package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/repository"
	"github.com/danielagrograos-wq/senior/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// backgroundCheckValidityDays is how long an approved criminal record check
// stays valid before bookings against the caregiver are refused.
const backgroundCheckValidityDays = 180

type dashboardReader interface {
	Dashboard(ctx context.Context) (*repository.DashboardStats, error)
}

type verificationReviewStore interface {
	GetByID(ctx context.Context, id int64) (*models.VerificationDocument, error)
	ListPending(ctx context.Context) ([]models.VerificationDocument, error)
	ReviewIfPending(ctx context.Context, id int64, status string, notes *string) (*models.VerificationDocument, error)
	SetExpiry(ctx context.Context, id int64, expiry *time.Time) error
}

type caregiverVerifier interface {
	GetByID(ctx context.Context, id int64) (*models.CaregiverProfile, error)
	SetVerification(ctx context.Context, caregiverID int64, status string, verified bool, expiry *time.Time) error
}

type AdminHandler struct {
	stats            dashboardReader
	verificationRepo verificationReviewStore
	caregiverRepo    caregiverVerifier
	notifier         services.Notifier
}

func NewAdminHandler(
	stats dashboardReader,
	verificationRepo verificationReviewStore,
	caregiverRepo caregiverVerifier,
	notifier services.Notifier,
) *AdminHandler {
	return &AdminHandler{
		stats:            stats,
		verificationRepo: verificationRepo,
		caregiverRepo:    caregiverRepo,
		notifier:         notifier,
	}
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.stats.Dashboard(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to load dashboard"})
	}

	return c.JSON(fiber.Map{"stats": stats})
}

func (h *AdminHandler) ListPendingVerifications(c *fiber.Ctx) error {
	docs, err := h.verificationRepo.ListPending(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to list pending documents"})
	}

	return c.JSON(fiber.Map{"documents": docs})
}

type reviewVerificationRequest struct {
	Approve bool    `json:"approve"`
	Notes   *string `json:"notes"`
}

// ReviewVerification approves or rejects a pending document. Approving a
// criminal record check also marks the caregiver verified and stamps the
// background check expiry.
func (h *AdminHandler) ReviewVerification(c *fiber.Ctx) error {
	docID, err := c.ParamsInt("id")
	if err != nil || docID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid document id"})
	}

	var req reviewVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	status := "rejected"
	if req.Approve {
		status = "approved"
	}

	doc, err := h.verificationRepo.ReviewIfPending(c.Context(), int64(docID), status, req.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusUnprocessableEntity).
				JSON(fiber.Map{"error": "Document is not pending review"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to review document"})
	}

	caregiver, err := h.caregiverRepo.GetByID(c.Context(), doc.CaregiverID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to fetch caregiver"})
	}

	if req.Approve && doc.DocType == "criminal_record" {
		expiry := time.Now().UTC().AddDate(0, 0, backgroundCheckValidityDays)
		if err := h.verificationRepo.SetExpiry(c.Context(), doc.ID, &expiry); err != nil {
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"error": "Failed to set document expiry"})
		}
		if err := h.caregiverRepo.SetVerification(c.Context(), doc.CaregiverID, "approved", true, &expiry); err != nil {
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"error": "Failed to update caregiver"})
		}
		doc.ExpiryDate = &expiry
	} else if !req.Approve {
		if err := h.caregiverRepo.SetVerification(c.Context(), doc.CaregiverID, "rejected", false, nil); err != nil {
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"error": "Failed to update caregiver"})
		}
	}

	title, message := "Documento rejeitado", "Seu documento foi rejeitado. Envie um novo documento para continuar."
	if req.Approve {
		title, message = "Documento aprovado!", "Seu documento foi aprovado. Seu perfil está mais perto da verificação completa."
	}
	h.notifier.Notify(caregiver.UserID, "verification_"+status, title, message,
		map[string]any{"document_id": doc.ID})

	return c.JSON(fiber.Map{"document": doc})
}
