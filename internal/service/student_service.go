package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/internal/models"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
)

// StudentStore abstracts persistence for students.
type StudentStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByParent(ctx context.Context, parentID string) ([]models.Student, error)
	FindByCohort(ctx context.Context, standard models.Standard, section, academicYear string) ([]models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	Update(ctx context.Context, student *models.Student) error
}

// StudentService serves student records with parent-scoped access.
type StudentService struct {
	students StudentStore
	logger   *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(students StudentStore, logger *zap.Logger) *StudentService {
	return &StudentService{students: students, logger: logger}
}

// Get returns one student. Parents may only see their own children.
func (s *StudentService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "student not found")
	}
	if claims != nil && claims.Role == models.RoleParent && student.ParentID != claims.UserID {
		return nil, appErrors.ErrForbidden
	}
	return student, nil
}

// List returns students matching the filter. Parent callers are forced
// onto their own children regardless of the requested filter.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter, claims *models.JWTClaims) ([]models.Student, *models.Pagination, error) {
	if claims != nil && claims.Role == models.RoleParent {
		filter.ParentID = claims.UserID
	}
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// MyChildren returns the caller's children.
func (s *StudentService) MyChildren(ctx context.Context, parentID string) ([]models.Student, error) {
	students, err := s.students.FindByParent(ctx, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list children")
	}
	return students, nil
}

// Deactivate withdraws a student from the active roster.
func (s *StudentService) Deactivate(ctx context.Context, id string) error {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "student not found")
	}
	if !student.Active {
		return nil
	}
	student.Active = false
	if err := s.students.Update(ctx, student); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "deactivate student")
	}
	s.logger.Info("student deactivated", zap.String("student_id", id))
	return nil
}
