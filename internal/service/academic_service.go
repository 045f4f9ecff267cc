package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/models"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
)

// AcademicStore abstracts persistence for academic setup and teacher
// assignments.
type AcademicStore interface {
	CreateYear(ctx context.Context, year *models.AcademicYear) error
	ListYears(ctx context.Context) ([]models.AcademicYear, error)
	ActiveYear(ctx context.Context) (*models.AcademicYear, error)
	ActivateYear(ctx context.Context, id string) error
	CreateSection(ctx context.Context, section *models.Section) error
	ListSections(ctx context.Context, academicYear string, standard *models.Standard) ([]models.Section, error)
	CreateAssignment(ctx context.Context, assignment *models.TeacherAssignment) error
	AssignmentsForTeacher(ctx context.Context, teacherID, academicYear string) ([]models.TeacherAssignment, error)
	HasAssignment(ctx context.Context, teacherID string, standard models.Standard, section, academicYear string) (bool, error)
	DeleteAssignment(ctx context.Context, id string) error
}

// AcademicService handles academic years, sections and teacher
// assignments.
type AcademicService struct {
	academic AcademicStore
	users    UserAdminStore
	students StudentStore
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAcademicService constructs an AcademicService.
func NewAcademicService(academic AcademicStore, users UserAdminStore, students StudentStore, validate *validator.Validate, logger *zap.Logger) *AcademicService {
	return &AcademicService{academic: academic, users: users, students: students, validate: validate, logger: logger}
}

// CreateYear opens a new academic year, optionally activating it.
func (s *AcademicService) CreateYear(ctx context.Context, req dto.CreateAcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}
	year := &models.AcademicYear{Year: req.Year, Active: false}
	if err := s.academic.CreateYear(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create academic year")
	}
	if req.Active {
		if err := s.academic.ActivateYear(ctx, year.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "activate academic year")
		}
		year.Active = true
	}
	return year, nil
}

// ListYears returns every academic year.
func (s *AcademicService) ListYears(ctx context.Context) ([]models.AcademicYear, error) {
	years, err := s.academic.ListYears(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list academic years")
	}
	return years, nil
}

// ActivateYear switches the active academic year.
func (s *AcademicService) ActivateYear(ctx context.Context, id string) error {
	if err := s.academic.ActivateYear(ctx, id); err != nil {
		return notFoundOr(err, "academic year not found")
	}
	return nil
}

// CreateSection adds a division to a standard.
func (s *AcademicService) CreateSection(ctx context.Context, req dto.CreateSectionRequest) (*models.Section, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	section := &models.Section{
		Standard:     models.Standard(req.Standard),
		SectionName:  req.SectionName,
		Capacity:     req.Capacity,
		AcademicYear: req.AcademicYear,
		TeacherID:    req.TeacherID,
	}
	if err := s.academic.CreateSection(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create section")
	}
	return section, nil
}

// ListSections returns sections for a year, optionally per standard.
func (s *AcademicService) ListSections(ctx context.Context, academicYear, standard string) ([]models.Section, error) {
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic_year is required")
	}
	var std *models.Standard
	if standard != "" {
		v := models.Standard(standard)
		std = &v
	}
	sections, err := s.academic.ListSections(ctx, academicYear, std)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list sections")
	}
	return sections, nil
}

// AssignTeacher links a teacher to a cohort after checking the account
// actually holds the teacher role.
func (s *AcademicService) AssignTeacher(ctx context.Context, req dto.AssignTeacherRequest) (*models.TeacherAssignment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	teacher, err := s.users.FindByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lookup teacher")
	}
	if teacher.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user is not a teacher")
	}

	exists, err := s.academic.HasAssignment(ctx, req.TeacherID, models.Standard(req.Standard), req.Section, req.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check assignment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "teacher already assigned to this cohort")
	}

	assignment := &models.TeacherAssignment{
		TeacherID:      req.TeacherID,
		Standard:       models.Standard(req.Standard),
		Section:        req.Section,
		AcademicYear:   req.AcademicYear,
		IsClassTeacher: req.IsClassTeacher,
	}
	if err := s.academic.CreateAssignment(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create assignment")
	}
	return assignment, nil
}

// AssignmentsForTeacher returns a teacher's cohorts for one year.
func (s *AcademicService) AssignmentsForTeacher(ctx context.Context, teacherID, academicYear string) ([]models.TeacherAssignment, error) {
	assignments, err := s.academic.AssignmentsForTeacher(ctx, teacherID, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list assignments")
	}
	return assignments, nil
}

// StudentsForTeacher flattens a teacher's cohorts into one roster.
func (s *AcademicService) StudentsForTeacher(ctx context.Context, teacherID, academicYear string) ([]models.Student, error) {
	assignments, err := s.academic.AssignmentsForTeacher(ctx, teacherID, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list assignments")
	}
	var roster []models.Student
	for _, a := range assignments {
		students, err := s.students.FindByCohort(ctx, a.Standard, a.Section, a.AcademicYear)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load cohort")
		}
		roster = append(roster, students...)
	}
	return roster, nil
}

// RemoveAssignment deletes one teacher assignment.
func (s *AcademicService) RemoveAssignment(ctx context.Context, id string) error {
	if err := s.academic.DeleteAssignment(ctx, id); err != nil {
		return notFoundOr(err, "assignment not found")
	}
	return nil
}
