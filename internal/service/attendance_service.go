package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/models"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
)

// AttendanceStore abstracts persistence for attendance records.
type AttendanceStore interface {
	Upsert(ctx context.Context, a *models.Attendance) error
	FindByStudentsAndDate(ctx context.Context, studentIDs []string, date string) (map[string]models.Attendance, error)
	HistoryForStudent(ctx context.Context, studentID, fromDate, toDate string) ([]models.Attendance, error)
	MonthlySummary(ctx context.Context, studentID, fromDate, toDate string) (map[models.AttendanceStatus]int, error)
}

// AttendanceService records and reads daily attendance.
type AttendanceService struct {
	attendance AttendanceStore
	students   StudentStore
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(attendance AttendanceStore, students StudentStore, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	return &AttendanceService{attendance: attendance, students: students, validate: validate, logger: logger}
}

// Mark records one student's attendance for a date. Re-marking the same
// day overwrites the earlier record.
func (s *AttendanceService) Mark(ctx context.Context, req dto.MarkAttendanceRequest, teacherID string) (*models.Attendance, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return nil, notFoundOr(err, "student not found")
	}

	record := &models.Attendance{
		StudentID: req.StudentID,
		Date:      req.Date,
		Status:    models.AttendanceStatus(req.Status),
		TeacherID: teacherID,
		Remarks:   req.Remarks,
	}
	if err := s.attendance.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "mark attendance")
	}
	return record, nil
}

// MarkBulk records a whole cohort for one date. Entries for students
// outside the cohort are rejected up front.
func (s *AttendanceService) MarkBulk(ctx context.Context, req dto.BulkAttendanceRequest, teacherID string) (int, error) {
	if err := s.validate.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	cohort, err := s.students.FindByCohort(ctx, models.Standard(req.Standard), req.Section, req.AcademicYear)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load cohort")
	}
	inCohort := make(map[string]struct{}, len(cohort))
	for _, st := range cohort {
		inCohort[st.ID] = struct{}{}
	}
	for _, entry := range req.Entries {
		if _, ok := inCohort[entry.StudentID]; !ok {
			return 0, appErrors.Clone(appErrors.ErrValidation, "entry references a student outside the cohort")
		}
	}

	marked := 0
	for _, entry := range req.Entries {
		record := &models.Attendance{
			StudentID: entry.StudentID,
			Date:      req.Date,
			Status:    models.AttendanceStatus(entry.Status),
			TeacherID: teacherID,
			Remarks:   entry.Remarks,
		}
		if err := s.attendance.Upsert(ctx, record); err != nil {
			return marked, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "mark attendance")
		}
		marked++
	}
	return marked, nil
}

// ClassRegister joins a cohort's roster with the day's attendance.
func (s *AttendanceService) ClassRegister(ctx context.Context, query dto.ClassRegisterQuery) ([]models.ClassRegisterEntry, error) {
	if err := s.validate.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid register query")
	}

	cohort, err := s.students.FindByCohort(ctx, models.Standard(query.Standard), query.Section, query.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load cohort")
	}
	ids := make([]string, len(cohort))
	for i, st := range cohort {
		ids[i] = st.ID
	}
	records, err := s.attendance.FindByStudentsAndDate(ctx, ids, query.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load attendance")
	}

	register := make([]models.ClassRegisterEntry, len(cohort))
	for i, st := range cohort {
		entry := models.ClassRegisterEntry{Student: st}
		if rec, ok := records[st.ID]; ok {
			r := rec
			entry.Attendance = &r
		}
		register[i] = entry
	}
	return register, nil
}

// History returns a student's records for a window. Parents may only
// see their own children.
func (s *AttendanceService) History(ctx context.Context, studentID string, query dto.AttendanceHistoryQuery, claims *models.JWTClaims) ([]models.Attendance, error) {
	if err := s.validate.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid history query")
	}
	if err := s.authorizeStudentRead(ctx, studentID, claims); err != nil {
		return nil, err
	}
	records, err := s.attendance.HistoryForStudent(ctx, studentID, query.From, query.To)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "attendance history")
	}
	return records, nil
}

// Summary aggregates a student's counts for a window.
func (s *AttendanceService) Summary(ctx context.Context, studentID string, query dto.AttendanceHistoryQuery, claims *models.JWTClaims) (*dto.AttendanceSummary, error) {
	if err := s.validate.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid summary query")
	}
	if err := s.authorizeStudentRead(ctx, studentID, claims); err != nil {
		return nil, err
	}
	counts, err := s.attendance.MonthlySummary(ctx, studentID, query.From, query.To)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "attendance summary")
	}
	return &dto.AttendanceSummary{StudentID: studentID, From: query.From, To: query.To, Counts: counts}, nil
}

func (s *AttendanceService) authorizeStudentRead(ctx context.Context, studentID string, claims *models.JWTClaims) error {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return notFoundOr(err, "student not found")
	}
	if claims != nil && claims.Role == models.RoleParent && student.ParentID != claims.UserID {
		return appErrors.ErrForbidden
	}
	return nil
}
