package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/models"
	"github.com/kidscholars/ksis-api/pkg/config"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
	"github.com/kidscholars/ksis-api/pkg/storage"
)

// DocumentStore abstracts persistence for application documents and
// gallery images.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *models.ApplicationDocument) error
	DocumentsForApplication(ctx context.Context, applicationID string) ([]models.ApplicationDocument, error)
	UpdateDocumentStatus(ctx context.Context, id string, status models.DocumentStatus) error
	CreateGalleryImage(ctx context.Context, img *models.GalleryImage) error
	ListGalleryImages(ctx context.Context) ([]models.GalleryImage, error)
	DeleteGalleryImage(ctx context.Context, id string) error
}

// DocumentService manages application document metadata and the public
// gallery, whose files live on the local filesystem store.
type DocumentService struct {
	documents    DocumentStore
	applications ApplicationStore
	files        *storage.LocalStorage
	cfg          config.GalleryConfig
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(documents DocumentStore, applications ApplicationStore, files *storage.LocalStorage, cfg config.GalleryConfig, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	return &DocumentService{documents: documents, applications: applications, files: files, cfg: cfg, validate: validate, logger: logger}
}

// AddDocument records metadata for one application document.
func (s *DocumentService) AddDocument(ctx context.Context, applicationID string, req dto.AddDocumentRequest) (*models.ApplicationDocument, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}
	if _, err := s.applications.FindByID(ctx, applicationID); err != nil {
		return nil, notFoundOr(err, "application not found")
	}

	doc := &models.ApplicationDocument{
		ApplicationID: applicationID,
		DocumentType:  req.DocumentType,
		DocumentName:  req.DocumentName,
		FileURL:       req.FileURL,
		Status:        models.DocumentPending,
	}
	if err := s.documents.CreateDocument(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "record document")
	}
	return doc, nil
}

// DocumentsForApplication returns an application's documents.
func (s *DocumentService) DocumentsForApplication(ctx context.Context, applicationID string) ([]models.ApplicationDocument, error) {
	docs, err := s.documents.DocumentsForApplication(ctx, applicationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list documents")
	}
	return docs, nil
}

// ReviewDocument records the staff verdict on one document.
func (s *DocumentService) ReviewDocument(ctx context.Context, id string, req dto.ReviewDocumentRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	if err := s.documents.UpdateDocumentStatus(ctx, id, models.DocumentStatus(req.Status)); err != nil {
		return notFoundOr(err, "document not found")
	}
	return nil
}

// ListGallery returns the public gallery in display order.
func (s *DocumentService) ListGallery(ctx context.Context) ([]models.GalleryImage, error) {
	images, err := s.documents.ListGalleryImages(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list gallery")
	}
	return images, nil
}

// AddGalleryImage stores the uploaded file and records the image.
func (s *DocumentService) AddGalleryImage(ctx context.Context, req dto.AddGalleryImageRequest, header *multipart.FileHeader) (*models.GalleryImage, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid gallery payload")
	}
	if header == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image file is required")
	}
	if s.cfg.MaxFileSizeBytes > 0 && header.Size > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image exceeds the maximum allowed size")
	}
	if !s.allowedMIME(header.Header.Get("Content-Type")) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported image type")
	}

	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "open upload")
	}
	defer file.Close()

	filename := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(header.Filename))
	if _, err := s.saveStream(filename, file); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store image")
	}

	img := &models.GalleryImage{
		URL:       "/gallery/files/" + filename,
		Alt:       req.Alt,
		SortOrder: req.SortOrder,
	}
	if err := s.documents.CreateGalleryImage(ctx, img); err != nil {
		if delErr := s.files.Delete(filename); delErr != nil {
			s.logger.Warn("orphaned gallery file", zap.String("file", filename), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "record image")
	}
	return img, nil
}

// DeleteGalleryImage removes the record and its file.
func (s *DocumentService) DeleteGalleryImage(ctx context.Context, id string) error {
	images, err := s.documents.ListGalleryImages(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list gallery")
	}
	var target *models.GalleryImage
	for i := range images {
		if images[i].ID == id {
			target = &images[i]
			break
		}
	}
	if target == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "gallery image not found")
	}

	if err := s.documents.DeleteGalleryImage(ctx, id); err != nil {
		return notFoundOr(err, "gallery image not found")
	}
	if filename := strings.TrimPrefix(target.URL, "/gallery/files/"); filename != target.URL {
		if err := s.files.Delete(filename); err != nil {
			s.logger.Warn("delete gallery file", zap.String("file", filename), zap.Error(err))
		}
	}
	return nil
}

func (s *DocumentService) allowedMIME(mime string) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(allowed, mime) {
			return true
		}
	}
	return false
}

func (s *DocumentService) saveStream(filename string, r io.Reader) (string, error) {
	return s.files.SaveStream(filename, r)
}
