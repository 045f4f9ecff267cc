package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kidscholars/ksis-api/internal/models"
)

// DocumentRepository manages application document metadata and gallery
// images.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs a DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, application_id, document_type, document_name, file_url, status, uploaded_at`

// CreateDocument records one uploaded document for an application.
func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *models.ApplicationDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.UploadedAt = time.Now().UTC()
	const query = `INSERT INTO application_documents (id, application_id, document_type, document_name, file_url, status, uploaded_at)
        VALUES (:id, :application_id, :document_type, :document_name, :file_url, :status, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// DocumentsForApplication returns an application's documents, newest first.
func (r *DocumentRepository) DocumentsForApplication(ctx context.Context, applicationID string) ([]models.ApplicationDocument, error) {
	query := fmt.Sprintf("SELECT %s FROM application_documents WHERE application_id = $1 ORDER BY uploaded_at DESC", documentColumns)
	var docs []models.ApplicationDocument
	if err := r.db.SelectContext(ctx, &docs, query, applicationID); err != nil {
		return nil, fmt.Errorf("documents for application: %w", err)
	}
	return docs, nil
}

// UpdateDocumentStatus records the staff verdict on one document.
func (r *DocumentRepository) UpdateDocumentStatus(ctx context.Context, id string, status models.DocumentStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE application_documents SET status = $2 WHERE id = $1", id, status)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireRow(res)
}

// CreateGalleryImage adds one image to the public gallery.
func (r *DocumentRepository) CreateGalleryImage(ctx context.Context, img *models.GalleryImage) error {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	img.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO gallery_images (id, url, alt, sort_order, created_at)
        VALUES (:id, :url, :alt, :sort_order, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, img); err != nil {
		return fmt.Errorf("create gallery image: %w", err)
	}
	return nil
}

// ListGalleryImages returns the gallery in display order.
func (r *DocumentRepository) ListGalleryImages(ctx context.Context) ([]models.GalleryImage, error) {
	const query = `SELECT id, url, alt, sort_order, created_at FROM gallery_images ORDER BY sort_order, created_at`
	var images []models.GalleryImage
	if err := r.db.SelectContext(ctx, &images, query); err != nil {
		return nil, fmt.Errorf("list gallery images: %w", err)
	}
	return images, nil
}

// DeleteGalleryImage removes one gallery image record.
func (r *DocumentRepository) DeleteGalleryImage(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM gallery_images WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete gallery image: %w", err)
	}
	return requireRow(res)
}
