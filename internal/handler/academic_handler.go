package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/service"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
	"github.com/kidscholars/ksis-api/pkg/response"
)

// AcademicHandler exposes academic setup and teacher assignment
// endpoints.
type AcademicHandler struct {
	academic *service.AcademicService
}

// NewAcademicHandler constructs AcademicHandler.
func NewAcademicHandler(academic *service.AcademicService) *AcademicHandler {
	return &AcademicHandler{academic: academic}
}

// CreateYear godoc
// @Summary Create an academic year
// @Tags Academic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateAcademicYearRequest true "Year"
// @Success 201 {object} response.Envelope
// @Router /academic/years [post]
func (h *AcademicHandler) CreateYear(c *gin.Context) {
	var req dto.CreateAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	year, err := h.academic.CreateYear(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, year)
}

// ListYears godoc
// @Summary List academic years
// @Tags Academic
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /academic/years [get]
func (h *AcademicHandler) ListYears(c *gin.Context) {
	years, err := h.academic.ListYears(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, nil)
}

// ActivateYear godoc
// @Summary Activate one academic year
// @Tags Academic
// @Produce json
// @Security BearerAuth
// @Param id path string true "Academic year ID"
// @Success 204
// @Router /academic/years/{id}/activate [post]
func (h *AcademicHandler) ActivateYear(c *gin.Context) {
	if err := h.academic.ActivateYear(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateSection godoc
// @Summary Create a section
// @Tags Academic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSectionRequest true "Section"
// @Success 201 {object} response.Envelope
// @Router /academic/sections [post]
func (h *AcademicHandler) CreateSection(c *gin.Context) {
	var req dto.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	section, err := h.academic.CreateSection(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// ListSections godoc
// @Summary List sections for an academic year
// @Tags Academic
// @Produce json
// @Security BearerAuth
// @Param academic_year query string true "Academic year"
// @Param standard query string false "Filter by standard"
// @Success 200 {object} response.Envelope
// @Router /academic/sections [get]
func (h *AcademicHandler) ListSections(c *gin.Context) {
	sections, err := h.academic.ListSections(c.Request.Context(), c.Query("academic_year"), c.Query("standard"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// AssignTeacher godoc
// @Summary Assign a teacher to a cohort
// @Tags Academic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AssignTeacherRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Router /academic/assignments [post]
func (h *AcademicHandler) AssignTeacher(c *gin.Context) {
	var req dto.AssignTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	assignment, err := h.academic.AssignTeacher(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// MyAssignments godoc
// @Summary List the caller's teaching assignments
// @Tags Academic
// @Produce json
// @Security BearerAuth
// @Param academic_year query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /academic/assignments/mine [get]
func (h *AcademicHandler) MyAssignments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	assignments, err := h.academic.AssignmentsForTeacher(c.Request.Context(), claims.UserID, c.Query("academic_year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// MyStudents godoc
// @Summary List the students across the caller's cohorts
// @Tags Academic
// @Produce json
// @Security BearerAuth
// @Param academic_year query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /academic/assignments/mine/students [get]
func (h *AcademicHandler) MyStudents(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	students, err := h.academic.StudentsForTeacher(c.Request.Context(), claims.UserID, c.Query("academic_year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// RemoveAssignment godoc
// @Summary Remove a teacher assignment
// @Tags Academic
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /academic/assignments/{id} [delete]
func (h *AcademicHandler) RemoveAssignment(c *gin.Context) {
	if err := h.academic.RemoveAssignment(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
