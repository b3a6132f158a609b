package handlers

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/repository"
	"github.com/danielagrograos-wq/senior/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type caregiverProfileStore interface {
	Create(ctx context.Context, input repository.CreateCaregiverProfileInput) (*models.CaregiverProfile, error)
	GetByID(ctx context.Context, id int64) (*models.CaregiverProfile, error)
	GetByUserID(ctx context.Context, userID int64) (*models.CaregiverProfile, error)
	UpdatePartial(ctx context.Context, userID int64, input repository.UpdateCaregiverProfileInput) (*models.CaregiverProfile, error)
	List(ctx context.Context, filter repository.CaregiverListFilter) ([]models.CaregiverProfile, int, error)
	SetBackgroundCheckStatus(ctx context.Context, caregiverID int64, status string) error
}

type clientProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.ClientProfile, error)
}

type caregiverMatcher interface {
	RankCaregivers(ctx context.Context, clientProfile *models.ClientProfile, filter repository.CaregiverListFilter) ([]models.CaregiverWithScore, int, error)
}

type verificationDocumentStore interface {
	Create(ctx context.Context, caregiverID int64, docType, docURL string) (*models.VerificationDocument, error)
	ListByCaregiver(ctx context.Context, caregiverID int64) ([]models.VerificationDocument, error)
}

type userNameReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type CaregiverHandler struct {
	caregiverRepo    caregiverProfileStore
	clientRepo       clientProfileStore
	userRepo         userNameReader
	verificationRepo verificationDocumentStore
	matcher          caregiverMatcher
	storage          services.FileStorage
}

func NewCaregiverHandler(
	caregiverRepo caregiverProfileStore,
	clientRepo clientProfileStore,
	userRepo userNameReader,
	verificationRepo verificationDocumentStore,
	matcher caregiverMatcher,
	storage services.FileStorage,
) *CaregiverHandler {
	return &CaregiverHandler{
		caregiverRepo:    caregiverRepo,
		clientRepo:       clientRepo,
		userRepo:         userRepo,
		verificationRepo: verificationRepo,
		matcher:          matcher,
		storage:          storage,
	}
}

type caregiverProfileRequest struct {
	Bio             *string  `json:"bio"`
	PriceHour       float64  `json:"price_hour"`
	PriceNight      *float64 `json:"price_night"`
	City            string   `json:"city"`
	Neighborhood    *string  `json:"neighborhood"`
	ExperienceYears int      `json:"experience_years"`
	Specializations []string `json:"specializations"`
	Certifications  []string `json:"certifications"`
	Languages       []string `json:"languages"`
	Hobbies         []string `json:"hobbies"`
	HasCar          bool     `json:"has_car"`
	AcceptsPets     bool     `json:"accepts_pets"`
	Available       *bool    `json:"available"`
}

func (h *CaregiverHandler) CreateProfile(c *fiber.Ctx) error {
	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	if role, _ := c.Locals("role").(string); role != "caregiver" {
		return c.Status(fiber.StatusForbidden).
			JSON(fiber.Map{"error": "Only caregivers can create a caregiver profile"})
	}

	var req caregiverProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.PriceHour <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price_hour must be positive"})
	}
	if strings.TrimSpace(req.City) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "city is required"})
	}

	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	profile, err := h.caregiverRepo.Create(c.Context(), repository.CreateCaregiverProfileInput{
		UserID:          userID,
		UserName:        user.Name,
		Bio:             req.Bio,
		PriceHour:       req.PriceHour,
		PriceNight:      req.PriceNight,
		City:            strings.TrimSpace(req.City),
		Neighborhood:    req.Neighborhood,
		ExperienceYears: req.ExperienceYears,
		Specializations: req.Specializations,
		Certifications:  req.Certifications,
		Languages:       req.Languages,
		Hobbies:         req.Hobbies,
		HasCar:          req.HasCar,
		AcceptsPets:     req.AcceptsPets,
		Available:       available,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Profile already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create profile"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"profile": profile})
}

func (h *CaregiverHandler) GetMyProfile(c *fiber.Ctx) error {
	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.caregiverRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(fiber.Map{"profile": profile})
}

type caregiverProfileUpdateRequest struct {
	Bio             *string   `json:"bio"`
	PhotoURL        *string   `json:"photo_url"`
	PriceHour       *float64  `json:"price_hour"`
	PriceNight      *float64  `json:"price_night"`
	City            *string   `json:"city"`
	Neighborhood    *string   `json:"neighborhood"`
	ExperienceYears *int      `json:"experience_years"`
	Specializations *[]string `json:"specializations"`
	Certifications  *[]string `json:"certifications"`
	Languages       *[]string `json:"languages"`
	Hobbies         *[]string `json:"hobbies"`
	HasCar          *bool     `json:"has_car"`
	AcceptsPets     *bool     `json:"accepts_pets"`
	Available       *bool     `json:"available"`
}

func (h *CaregiverHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req caregiverProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.PriceHour != nil && *req.PriceHour <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price_hour must be positive"})
	}

	profile, err := h.caregiverRepo.UpdatePartial(c.Context(), userID, repository.UpdateCaregiverProfileInput{
		Bio:             req.Bio,
		PhotoURL:        req.PhotoURL,
		PriceHour:       req.PriceHour,
		PriceNight:      req.PriceNight,
		City:            req.City,
		Neighborhood:    req.Neighborhood,
		ExperienceYears: req.ExperienceYears,
		Specializations: req.Specializations,
		Certifications:  req.Certifications,
		Languages:       req.Languages,
		Hobbies:         req.Hobbies,
		HasCar:          req.HasCar,
		AcceptsPets:     req.AcceptsPets,
		Available:       req.Available,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"profile": profile})
}

// ListCaregivers powers the discovery screen. With sort=smart_match and a
// client profile on file, results are ordered by compatibility score instead
// of rating.
func (h *CaregiverHandler) ListCaregivers(c *fiber.Ctx) error {
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	minPrice, err := parseNonNegativeFloat(c.Query("min_price"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid min_price"})
	}
	maxPrice, err := parseNonNegativeFloat(c.Query("max_price"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid max_price"})
	}
	minRating, err := parseNonNegativeFloat(c.Query("min_rating"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid min_rating"})
	}

	filter := repository.CaregiverListFilter{
		City:           c.Query("city"),
		Neighborhood:   c.Query("neighborhood"),
		MinPrice:       minPrice,
		MaxPrice:       maxPrice,
		VerifiedOnly:   c.QueryBool("verified_only"),
		AvailableOnly:  c.QueryBool("available_only", true),
		Specialization: c.Query("specialization"),
		MinRating:      minRating,
		Offset:         (page - 1) * limit,
		Limit:          limit,
	}

	if c.Query("sort") == "smart_match" {
		if ranked, total, ok := h.rankSmartMatch(c, filter); ok {
			return c.JSON(fiber.Map{
				"caregivers": ranked,
				"pagination": buildPaginationMeta(page, limit, total),
			})
		}
	}

	caregivers, total, err := h.caregiverRepo.List(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to list caregivers"})
	}

	return c.JSON(fiber.Map{
		"caregivers": caregivers,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

// rankSmartMatch falls back to the plain listing unless the caller is a
// client with a completed care profile.
func (h *CaregiverHandler) rankSmartMatch(c *fiber.Ctx, filter repository.CaregiverListFilter) ([]models.CaregiverWithScore, int, bool) {
	if role, _ := c.Locals("role").(string); role != "client" {
		return nil, 0, false
	}
	userID, err := parseProfileUserID(c)
	if err != nil {
		return nil, 0, false
	}
	clientProfile, err := h.clientRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return nil, 0, false
	}
	ranked, total, err := h.matcher.RankCaregivers(c.Context(), clientProfile, filter)
	if err != nil {
		return nil, 0, false
	}
	return ranked, total, true
}

func (h *CaregiverHandler) GetCaregiver(c *fiber.Ctx) error {
	caregiverID, err := c.ParamsInt("id")
	if err != nil || caregiverID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid caregiver id"})
	}

	profile, err := h.caregiverRepo.GetByID(c.Context(), int64(caregiverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Caregiver not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch caregiver"})
	}

	response := fiber.Map{"caregiver": profile}

	// Clients with a care profile also get their personal match score.
	if role, _ := c.Locals("role").(string); role == "client" {
		if userID, err := parseProfileUserID(c); err == nil {
			if clientProfile, err := h.clientRepo.GetByUserID(c.Context(), userID); err == nil {
				response["match_score"] = services.CalculateMatchScore(profile, clientProfile)
			}
		}
	}

	return c.JSON(response)
}

const maxProfilePhotoBytes = 5 << 20

var validPhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadProfilePhoto accepts a multipart image, stores it and points the
// caregiver's photo_url at the public location. The previous photo is removed
// best-effort.
func (h *CaregiverHandler) UploadProfilePhoto(c *fiber.Ctx) error {
	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo file is required"})
	}
	if fileHeader.Size > maxProfilePhotoBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).
			JSON(fiber.Map{"error": "Photo must be 5MB or smaller"})
	}
	if !validPhotoExtensions[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Photo must be a jpg, png or webp image"})
	}

	profile, err := h.caregiverRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Create a caregiver profile first"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read photo"})
	}
	defer file.Close()

	photoURL, err := h.storage.UploadFile(c.Context(), file, fileHeader.Filename, "profile-photos")
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to store photo"})
	}

	updated, err := h.caregiverRepo.UpdatePartial(c.Context(), userID, repository.UpdateCaregiverProfileInput{
		PhotoURL: &photoURL,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	if profile.PhotoURL != nil && *profile.PhotoURL != photoURL {
		if err := h.storage.DeleteFile(c.Context(), *profile.PhotoURL); err != nil {
			log.Printf("delete old profile photo: %v", err)
		}
	}

	return c.JSON(fiber.Map{"profile": updated})
}

var validDocumentTypes = map[string]bool{
	"id_document":      true,
	"criminal_record":  true,
	"certification":    true,
	"proof_of_address": true,
}

type verificationUploadRequest struct {
	DocumentType string `json:"document_type"`
	DocumentURL  string `json:"document_url"`
}

func (h *CaregiverHandler) UploadVerificationDocument(c *fiber.Ctx) error {
	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req verificationUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !validDocumentTypes[req.DocumentType] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid document type"})
	}
	if strings.TrimSpace(req.DocumentURL) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "document_url is required"})
	}

	profile, err := h.caregiverRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Create a caregiver profile first"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	doc, err := h.verificationRepo.Create(c.Context(), profile.ID, req.DocumentType, req.DocumentURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save document"})
	}

	// A fresh criminal record puts the caregiver back in the review queue.
	if req.DocumentType == "criminal_record" {
		if err := h.caregiverRepo.SetBackgroundCheckStatus(c.Context(), profile.ID, "pending_review"); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save document"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"document": doc})
}

func (h *CaregiverHandler) ListMyDocuments(c *fiber.Ctx) error {
	userID, err := parseProfileUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.caregiverRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	docs, err := h.verificationRepo.ListByCaregiver(c.Context(), profile.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list documents"})
	}

	return c.JSON(fiber.Map{"documents": docs})
}
