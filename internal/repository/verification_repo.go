package repository

import (
	"context"
	"time"

	"github.com/danielagrograos-wq/senior/internal/models"
)

const verificationColumns = `id, caregiver_id, doc_type, doc_url, status, expiry_date, review_notes, created_at`

type VerificationRepository struct {
	db DBTX
}

func NewVerificationRepository(db DBTX) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) Create(ctx context.Context, caregiverID int64, docType, docURL string) (*models.VerificationDocument, error) {
	query := `
		INSERT INTO verification_documents (caregiver_id, doc_type, doc_url, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING ` + verificationColumns

	return scanVerificationDocument(r.db.QueryRow(ctx, query, caregiverID, docType, docURL))
}

func (r *VerificationRepository) GetByID(ctx context.Context, id int64) (*models.VerificationDocument, error) {
	query := `SELECT ` + verificationColumns + ` FROM verification_documents WHERE id = $1`
	return scanVerificationDocument(r.db.QueryRow(ctx, query, id))
}

func (r *VerificationRepository) ListByCaregiver(ctx context.Context, caregiverID int64) ([]models.VerificationDocument, error) {
	query := `SELECT ` + verificationColumns + ` FROM verification_documents WHERE caregiver_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, caregiverID)
}

func (r *VerificationRepository) ListPending(ctx context.Context) ([]models.VerificationDocument, error) {
	query := `SELECT ` + verificationColumns + ` FROM verification_documents WHERE status = 'pending' ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query)
}

// ReviewIfPending stamps an admin decision on a pending document exactly once.
func (r *VerificationRepository) ReviewIfPending(ctx context.Context, id int64, status string, notes *string) (*models.VerificationDocument, error) {
	query := `
		UPDATE verification_documents
		SET status = $2, review_notes = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + verificationColumns

	return scanVerificationDocument(r.db.QueryRow(ctx, query, id, status, notes))
}

func (r *VerificationRepository) SetExpiry(ctx context.Context, id int64, expiry *time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE verification_documents SET expiry_date = $2 WHERE id = $1`, id, expiry)
	return err
}

func (r *VerificationRepository) list(ctx context.Context, query string, args ...any) ([]models.VerificationDocument, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]models.VerificationDocument, 0)
	for rows.Next() {
		doc, err := scanVerificationDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

func scanVerificationDocument(row rowScanner) (*models.VerificationDocument, error) {
	var doc models.VerificationDocument
	err := row.Scan(
		&doc.ID,
		&doc.CaregiverID,
		&doc.DocType,
		&doc.DocURL,
		&doc.Status,
		&doc.ExpiryDate,
		&doc.ReviewNotes,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
