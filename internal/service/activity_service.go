package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/models"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
)

// ActivityStore abstracts persistence for daily activity notes.
type ActivityStore interface {
	Upsert(ctx context.Context, a *models.DailyActivity) error
	FindByStudentAndDate(ctx context.Context, studentID, date string) (*models.DailyActivity, error)
	HistoryForStudent(ctx context.Context, studentID, fromDate, toDate string) ([]models.DailyActivity, error)
}

// ActivityService records and reads daily activity notes.
type ActivityService struct {
	activities ActivityStore
	students   StudentStore
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(activities ActivityStore, students StudentStore, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	return &ActivityService{activities: activities, students: students, validate: validate, logger: logger}
}

// Record stores the day's notes for one student, replacing an earlier
// submission for the same day.
func (s *ActivityService) Record(ctx context.Context, req dto.RecordActivityRequest, teacherID string) (*models.DailyActivity, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return nil, notFoundOr(err, "student not found")
	}

	activity := &models.DailyActivity{
		StudentID:     req.StudentID,
		TeacherID:     teacherID,
		Date:          req.Date,
		Rhymes:        req.Rhymes,
		Activities:    req.Activities,
		FoodHabits:    req.FoodHabits,
		NapStatus:     req.NapStatus,
		BehaviorNotes: req.BehaviorNotes,
		Homework:      req.Homework,
		Remarks:       req.Remarks,
	}
	if err := s.activities.Upsert(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "record activity")
	}
	return activity, nil
}

// ForDate returns one student's note for a single day. Parents may only
// see their own children.
func (s *ActivityService) ForDate(ctx context.Context, studentID, date string, claims *models.JWTClaims) (*models.DailyActivity, error) {
	if err := s.authorizeStudentRead(ctx, studentID, claims); err != nil {
		return nil, err
	}
	activity, err := s.activities.FindByStudentAndDate(ctx, studentID, date)
	if err != nil {
		return nil, notFoundOr(err, "no activity recorded for this date")
	}
	return activity, nil
}

// History returns a student's notes for a window.
func (s *ActivityService) History(ctx context.Context, studentID string, query dto.ActivityHistoryQuery, claims *models.JWTClaims) ([]models.DailyActivity, error) {
	if err := s.validate.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid history query")
	}
	if err := s.authorizeStudentRead(ctx, studentID, claims); err != nil {
		return nil, err
	}
	activities, err := s.activities.HistoryForStudent(ctx, studentID, query.From, query.To)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "activity history")
	}
	return activities, nil
}

func (s *ActivityService) authorizeStudentRead(ctx context.Context, studentID string, claims *models.JWTClaims) error {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return notFoundOr(err, "student not found")
	}
	if claims != nil && claims.Role == models.RoleParent && student.ParentID != claims.UserID {
		return appErrors.ErrForbidden
	}
	return nil
}
