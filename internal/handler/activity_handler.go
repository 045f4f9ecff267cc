package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/service"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
	"github.com/kidscholars/ksis-api/pkg/response"
)

// ActivityHandler exposes daily activity endpoints.
type ActivityHandler struct {
	activities *service.ActivityService
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(activities *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// Record godoc
// @Summary Record a student's daily activity notes
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RecordActivityRequest true "Activity"
// @Success 201 {object} response.Envelope
// @Router /activities [post]
func (h *ActivityHandler) Record(c *gin.Context) {
	var req dto.RecordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	activity, err := h.activities.Record(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// ForDate godoc
// @Summary One student's activity note for a date
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /activities/student/{id}/date [get]
func (h *ActivityHandler) ForDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	activity, err := h.activities.ForDate(c.Request.Context(), c.Param("id"), date, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// History godoc
// @Summary A student's activity notes for a window
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param from query string true "Window start (YYYY-MM-DD)"
// @Param to query string true "Window end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /activities/student/{id} [get]
func (h *ActivityHandler) History(c *gin.Context) {
	var query dto.ActivityHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	activities, err := h.activities.History(c.Request.Context(), c.Param("id"), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities, nil)
}
