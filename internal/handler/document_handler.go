package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/service"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
	"github.com/kidscholars/ksis-api/pkg/response"
)

// DocumentHandler exposes application document and gallery endpoints.
type DocumentHandler struct {
	documents *service.DocumentService
}

// NewDocumentHandler constructs DocumentHandler.
func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// AddDocument godoc
// @Summary Record a document for an application
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param payload body dto.AddDocumentRequest true "Document"
// @Success 201 {object} response.Envelope
// @Router /applications/{id}/documents [post]
func (h *DocumentHandler) AddDocument(c *gin.Context) {
	var req dto.AddDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	doc, err := h.documents.AddDocument(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// ListDocuments godoc
// @Summary List an application's documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	docs, err := h.documents.DocumentsForApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, nil)
}

// ReviewDocument godoc
// @Summary Record the staff verdict on a document
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Param payload body dto.ReviewDocumentRequest true "Verdict"
// @Success 204
// @Router /documents/{id}/review [post]
func (h *DocumentHandler) ReviewDocument(c *gin.Context) {
	var req dto.ReviewDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	if err := h.documents.ReviewDocument(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListGallery godoc
// @Summary List the public gallery
// @Tags Gallery
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/gallery [get]
func (h *DocumentHandler) ListGallery(c *gin.Context) {
	images, err := h.documents.ListGallery(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, images, nil)
}

// AddGalleryImage godoc
// @Summary Upload a gallery image
// @Tags Gallery
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Param alt formData string true "Alt text"
// @Param sort_order formData int false "Display order"
// @Success 201 {object} response.Envelope
// @Router /gallery [post]
func (h *DocumentHandler) AddGalleryImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image file is required"))
		return
	}
	sortOrder, _ := strconv.Atoi(c.DefaultPostForm("sort_order", "0"))
	req := dto.AddGalleryImageRequest{
		Alt:       c.PostForm("alt"),
		SortOrder: sortOrder,
	}
	img, err := h.documents.AddGalleryImage(c.Request.Context(), req, header)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, img)
}

// DeleteGalleryImage godoc
// @Summary Delete a gallery image
// @Tags Gallery
// @Produce json
// @Security BearerAuth
// @Param id path string true "Image ID"
// @Success 204
// @Router /gallery/{id} [delete]
func (h *DocumentHandler) DeleteGalleryImage(c *gin.Context) {
	if err := h.documents.DeleteGalleryImage(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
