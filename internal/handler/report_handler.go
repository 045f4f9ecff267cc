package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/kidscholars/ksis-api/internal/service"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
	"github.com/kidscholars/ksis-api/pkg/response"
)

// ReportHandler streams CSV and PDF exports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ApplicationRegister godoc
// @Summary Export the application register
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /reports/applications [get]
func (h *ReportHandler) ApplicationRegister(c *gin.Context) {
	format, err := reportFormat(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.reports.ApplicationRegister(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeReport(c, report)
}

// StudentRoster godoc
// @Summary Export the active student roster
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /reports/students [get]
func (h *ReportHandler) StudentRoster(c *gin.Context) {
	format, err := reportFormat(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.reports.StudentRoster(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeReport(c, report)
}

func reportFormat(c *gin.Context) (service.ReportFormat, error) {
	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		return service.ReportCSV, nil
	case "pdf":
		return service.ReportPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
}

func writeReport(c *gin.Context, report *service.Report) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(200, report.ContentType, report.Content)
}
