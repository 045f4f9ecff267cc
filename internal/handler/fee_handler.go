package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/service"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
	"github.com/kidscholars/ksis-api/pkg/response"
)

// FeeHandler exposes fee structure and payment endpoints.
type FeeHandler struct {
	fees *service.FeeService
}

// NewFeeHandler constructs FeeHandler.
func NewFeeHandler(fees *service.FeeService) *FeeHandler {
	return &FeeHandler{fees: fees}
}

// UpsertStructure godoc
// @Summary Create or replace the fee structure for a standard
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpsertFeeStructureRequest true "Fee structure"
// @Success 200 {object} response.Envelope
// @Router /fees/structures [put]
func (h *FeeHandler) UpsertStructure(c *gin.Context) {
	var req dto.UpsertFeeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	fs, err := h.fees.UpsertStructure(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fs, nil)
}

// ListStructures godoc
// @Summary List fee structures for an academic year
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Param academic_year query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /fees/structures [get]
func (h *FeeHandler) ListStructures(c *gin.Context) {
	year := c.Query("academic_year")
	if year == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academic_year is required"))
		return
	}
	structures, err := h.fees.ListStructures(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, structures, nil)
}

// RecordPayment godoc
// @Summary Record an offline fee payment
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RecordPaymentRequest true "Payment"
// @Success 201 {object} response.Envelope
// @Router /fees/payments [post]
func (h *FeeHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	payment, err := h.fees.RecordPayment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// CreateOrder godoc
// @Summary Open a payment gateway order
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateOrderRequest true "Order"
// @Success 201 {object} response.Envelope
// @Router /fees/payments/order [post]
func (h *FeeHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	order, err := h.fees.CreateOrder(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}

// VerifyPayment godoc
// @Summary Verify a payment gateway callback
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.VerifyPaymentRequest true "Callback triple"
// @Success 200 {object} response.Envelope
// @Router /fees/payments/verify [post]
func (h *FeeHandler) VerifyPayment(c *gin.Context) {
	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.fees.VerifyPayment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// PaymentsForStudent godoc
// @Summary Payment history for a student
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /fees/student/{id}/payments [get]
func (h *FeeHandler) PaymentsForStudent(c *gin.Context) {
	payments, err := h.fees.PaymentsForStudent(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// Summary godoc
// @Summary Fee dues summary for a student
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /fees/student/{id}/summary [get]
func (h *FeeHandler) Summary(c *gin.Context) {
	summary, err := h.fees.Summary(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
