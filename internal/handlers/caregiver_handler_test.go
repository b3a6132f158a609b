package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type stubCaregiverStore struct {
	listResult []models.CaregiverProfile
	listTotal  int
	listErr    error
	getResult  *models.CaregiverProfile
	getErr     error
	lastFilter repository.CaregiverListFilter

	lastCheckCaregiverID int64
	lastCheckStatus      string
}

func (s *stubCaregiverStore) Create(_ context.Context, _ repository.CreateCaregiverProfileInput) (*models.CaregiverProfile, error) {
	return nil, nil
}

func (s *stubCaregiverStore) GetByID(_ context.Context, _ int64) (*models.CaregiverProfile, error) {
	return s.getResult, s.getErr
}

func (s *stubCaregiverStore) GetByUserID(_ context.Context, _ int64) (*models.CaregiverProfile, error) {
	return s.getResult, s.getErr
}

func (s *stubCaregiverStore) UpdatePartial(_ context.Context, _ int64, _ repository.UpdateCaregiverProfileInput) (*models.CaregiverProfile, error) {
	return nil, nil
}

func (s *stubCaregiverStore) List(_ context.Context, filter repository.CaregiverListFilter) ([]models.CaregiverProfile, int, error) {
	s.lastFilter = filter
	return s.listResult, s.listTotal, s.listErr
}

func (s *stubCaregiverStore) SetBackgroundCheckStatus(_ context.Context, caregiverID int64, status string) error {
	s.lastCheckCaregiverID = caregiverID
	s.lastCheckStatus = status
	return nil
}

type stubVerificationStore struct {
	created *models.VerificationDocument
}

func (s *stubVerificationStore) Create(_ context.Context, caregiverID int64, docType, docURL string) (*models.VerificationDocument, error) {
	s.created = &models.VerificationDocument{ID: 7, CaregiverID: caregiverID, DocType: docType, DocURL: docURL}
	return s.created, nil
}

func (s *stubVerificationStore) ListByCaregiver(_ context.Context, _ int64) ([]models.VerificationDocument, error) {
	return nil, nil
}

type stubClientStore struct {
	profile *models.ClientProfile
	err     error
}

func (s *stubClientStore) GetByUserID(_ context.Context, _ int64) (*models.ClientProfile, error) {
	return s.profile, s.err
}

type stubMatcher struct {
	ranked []models.CaregiverWithScore
	total  int
	called bool
}

func (s *stubMatcher) RankCaregivers(_ context.Context, _ *models.ClientProfile, _ repository.CaregiverListFilter) ([]models.CaregiverWithScore, int, error) {
	s.called = true
	return s.ranked, s.total, nil
}

func newCaregiverTestApp(store *stubCaregiverStore, clients *stubClientStore, matcher *stubMatcher, role string) *fiber.App {
	handler := NewCaregiverHandler(store, clients, nil, nil, matcher, nil)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		c.Locals("role", role)
		return c.Next()
	})
	app.Get("/api/v1/caregivers", handler.ListCaregivers)
	app.Get("/api/v1/caregivers/:id", handler.GetCaregiver)
	return app
}

func TestListCaregiversPassesFilters(t *testing.T) {
	store := &stubCaregiverStore{
		listResult: []models.CaregiverProfile{{ID: 1, City: "Campo Grande"}},
		listTotal:  1,
	}
	app := newCaregiverTestApp(store, &stubClientStore{err: pgx.ErrNoRows}, &stubMatcher{}, "client")

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/caregivers?city=Campo%20Grande&min_price=20&verified_only=true&page=2&limit=5", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if store.lastFilter.City != "Campo Grande" || store.lastFilter.MinPrice != 20 {
		t.Fatalf("unexpected filter: %+v", store.lastFilter)
	}
	if !store.lastFilter.VerifiedOnly {
		t.Fatal("expected verified_only filter")
	}
	if store.lastFilter.Offset != 5 || store.lastFilter.Limit != 5 {
		t.Fatalf("unexpected paging: offset=%d limit=%d", store.lastFilter.Offset, store.lastFilter.Limit)
	}
}

func TestListCaregiversSmartMatchUsesRanker(t *testing.T) {
	store := &stubCaregiverStore{}
	matcher := &stubMatcher{
		ranked: []models.CaregiverWithScore{
			{CaregiverProfile: models.CaregiverProfile{ID: 2}, MatchScore: 85},
		},
		total: 1,
	}
	clients := &stubClientStore{profile: &models.ClientProfile{UserID: 42, CareLevel: "medical"}}
	app := newCaregiverTestApp(store, clients, matcher, "client")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/caregivers?sort=smart_match", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !matcher.called {
		t.Fatal("expected the smart match ranker to be used")
	}

	var body struct {
		Caregivers []models.CaregiverWithScore `json:"caregivers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Caregivers) != 1 || body.Caregivers[0].MatchScore != 85 {
		t.Fatalf("unexpected ranked payload: %+v", body.Caregivers)
	}
}

func TestListCaregiversSmartMatchFallsBackWithoutProfile(t *testing.T) {
	store := &stubCaregiverStore{listResult: []models.CaregiverProfile{}, listTotal: 0}
	matcher := &stubMatcher{}
	app := newCaregiverTestApp(store, &stubClientStore{err: pgx.ErrNoRows}, matcher, "client")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/caregivers?sort=smart_match", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if matcher.called {
		t.Fatal("ranker should be skipped without a client profile")
	}
}

func TestUploadCriminalRecordQueuesBackgroundCheck(t *testing.T) {
	store := &stubCaregiverStore{
		getResult: &models.CaregiverProfile{ID: 7, UserID: 42},
	}
	docs := &stubVerificationStore{}
	handler := NewCaregiverHandler(store, &stubClientStore{}, nil, docs, nil, nil)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		c.Locals("role", "caregiver")
		return c.Next()
	})
	app.Post("/api/v1/caregivers/documents", handler.UploadVerificationDocument)

	body := `{"document_type":"criminal_record","document_url":"https://cdn.example.com/record.pdf"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/caregivers/documents", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if store.lastCheckCaregiverID != 7 || store.lastCheckStatus != "pending_review" {
		t.Fatalf("expected caregiver 7 queued as pending_review, got id=%d status=%q",
			store.lastCheckCaregiverID, store.lastCheckStatus)
	}
}

func TestUploadCertificationLeavesBackgroundCheckAlone(t *testing.T) {
	store := &stubCaregiverStore{
		getResult: &models.CaregiverProfile{ID: 7, UserID: 42},
	}
	docs := &stubVerificationStore{}
	handler := NewCaregiverHandler(store, &stubClientStore{}, nil, docs, nil, nil)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Post("/api/v1/caregivers/documents", handler.UploadVerificationDocument)

	body := `{"document_type":"certification","document_url":"https://cdn.example.com/cert.pdf"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/caregivers/documents", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if store.lastCheckStatus != "" {
		t.Fatalf("background check status should be untouched, got %q", store.lastCheckStatus)
	}
}

func TestGetCaregiverNotFound(t *testing.T) {
	store := &stubCaregiverStore{getErr: pgx.ErrNoRows}
	app := newCaregiverTestApp(store, &stubClientStore{err: pgx.ErrNoRows}, &stubMatcher{}, "caregiver")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/caregivers/99", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
