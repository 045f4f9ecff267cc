package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/service"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
	"github.com/kidscholars/ksis-api/pkg/response"
)

// ApplicationHandler exposes the public enquiry endpoints and the staff
// lifecycle endpoints.
type ApplicationHandler struct {
	applications *service.ApplicationService
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(applications *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// Submit godoc
// @Summary Submit a public admission enquiry
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body dto.SubmitApplicationRequest true "Enquiry"
// @Success 201 {object} response.Envelope
// @Router /public/application [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.applications.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// CheckStatus godoc
// @Summary Check application status by reference number and date of birth
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body dto.StatusCheckRequest true "Lookup"
// @Success 200 {object} response.Envelope
// @Router /public/application/status [post]
func (h *ApplicationHandler) CheckStatus(c *gin.Context) {
	var req dto.StatusCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	view, err := h.applications.CheckStatus(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ResolveTracking godoc
// @Summary Resolve the tracking link for an application
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body dto.StatusCheckRequest true "Lookup"
// @Success 200 {object} response.Envelope
// @Router /public/application/resolve-tracking [post]
func (h *ApplicationHandler) ResolveTracking(c *gin.Context) {
	var req dto.StatusCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.applications.ResolveTracking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Track godoc
// @Summary Track an application by capability token
// @Tags Public
// @Produce json
// @Param token path string true "Tracking token"
// @Success 200 {object} response.Envelope
// @Router /public/application/track/{token} [get]
func (h *ApplicationHandler) Track(c *gin.Context) {
	view, err := h.applications.Track(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// SubmitDocuments godoc
// @Summary Submit the document bundle link for an application
// @Tags Public
// @Accept json
// @Produce json
// @Param token path string true "Tracking token"
// @Param payload body dto.SubmitLinkRequest true "Link"
// @Success 200 {object} response.Envelope
// @Router /public/application/track/{token}/submit-documents [post]
func (h *ApplicationHandler) SubmitDocuments(c *gin.Context) {
	h.submitLink(c, h.applications.SubmitDocumentsLink)
}

// SubmitPaymentReceipt godoc
// @Summary Submit the payment receipt link for an application
// @Tags Public
// @Accept json
// @Produce json
// @Param token path string true "Tracking token"
// @Param payload body dto.SubmitLinkRequest true "Link"
// @Success 200 {object} response.Envelope
// @Router /public/application/track/{token}/submit-payment-receipt [post]
func (h *ApplicationHandler) SubmitPaymentReceipt(c *gin.Context) {
	h.submitLink(c, h.applications.SubmitPaymentReceiptLink)
}

func (h *ApplicationHandler) submitLink(c *gin.Context, submit func(ctx context.Context, token string, req dto.SubmitLinkRequest) error) {
	var req dto.SubmitLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	if err := submit(c.Request.Context(), c.Param("token"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "link submitted"}, nil)
}

// List godoc
// @Summary List applications
// @Tags Applications
// @Produce json
// @Param status query string false "Filter by status"
// @Param class query string false "Filter by class"
// @Param search query string false "Search by student, parent or reference"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	var query dto.ListApplicationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	apps, pagination, err := h.applications.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, pagination)
}

// Get godoc
// @Summary Get application detail
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.applications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Update godoc
// @Summary Update application status, remarks or section
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.UpdateApplicationRequest true "Update"
// @Success 200 {object} response.Envelope
// @Router /applications/{id} [patch]
func (h *ApplicationHandler) Update(c *gin.Context) {
	var req dto.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.applications.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Admit godoc
// @Summary Admit an application into a student record
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.AdmitRequest true "Placement"
// @Success 201 {object} response.Envelope
// @Router /applications/{id}/admit [post]
func (h *ApplicationHandler) Admit(c *gin.Context) {
	var req dto.AdmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.applications.Admit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
