package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/internal/models"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
	"github.com/kidscholars/ksis-api/pkg/export"
)

// ReportFormat selects the export encoding.
type ReportFormat string

const (
	ReportCSV ReportFormat = "csv"
	ReportPDF ReportFormat = "pdf"
)

// Report is a rendered export ready to stream to the client.
type Report struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ReportService renders the application register and student roster as
// CSV or PDF downloads.
type ReportService struct {
	applications ApplicationStore
	students     StudentStore
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	logger       *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(applications ApplicationStore, students StudentStore, logger *zap.Logger) *ReportService {
	return &ReportService{
		applications: applications,
		students:     students,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
	}
}

// ApplicationRegister exports every application.
func (s *ReportService) ApplicationRegister(ctx context.Context, format ReportFormat) (*Report, error) {
	apps, _, err := s.applications.List(ctx, models.ApplicationFilter{PageSize: 100, Page: 1})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load applications")
	}

	dataset := export.Dataset{
		Headers: []string{"Reference", "Student", "Class", "Parent", "Mobile", "Email", "Status", "Submitted"},
	}
	for _, app := range apps {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Reference": app.ReferenceNumber,
			"Student":   app.StudentName,
			"Class":     string(app.ApplyingForClass),
			"Parent":    app.ParentName,
			"Mobile":    app.Mobile,
			"Email":     app.Email,
			"Status":    string(app.Status),
			"Submitted": app.CreatedAt.Format("2006-01-02"),
		})
	}
	return s.render(dataset, "Application Register", "application-register", format)
}

// StudentRoster exports the active student roster.
func (s *ReportService) StudentRoster(ctx context.Context, format ReportFormat) (*Report, error) {
	active := true
	students, _, err := s.students.List(ctx, models.StudentFilter{Active: &active, PageSize: 100, Page: 1})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load students")
	}

	dataset := export.Dataset{
		Headers: []string{"Admission No", "Roll No", "Student", "Class", "Section", "Academic Year"},
	}
	for _, st := range students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Admission No":  st.AdmissionNumber,
			"Roll No":       st.RollNumber,
			"Student":       st.StudentName,
			"Class":         string(st.CurrentClass),
			"Section":       st.Section,
			"Academic Year": st.AcademicYear,
		})
	}
	return s.render(dataset, "Student Roster", "student-roster", format)
}

func (s *ReportService) render(dataset export.Dataset, title, basename string, format ReportFormat) (*Report, error) {
	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case ReportCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv")
		}
		return &Report{
			Filename:    fmt.Sprintf("%s-%s.csv", basename, stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case ReportPDF:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf")
		}
		return &Report{
			Filename:    fmt.Sprintf("%s-%s.pdf", basename, stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report format %q", format))
	}
}
