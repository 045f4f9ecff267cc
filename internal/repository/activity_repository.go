package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kidscholars/ksis-api/internal/models"
)

// ActivityRepository manages persistence for daily activity notes.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = `id, student_id, teacher_id, date, rhymes, activities, food_habits,
        nap_status, behavior_notes, homework, remarks, created_at`

// Upsert records the day's notes for one student. A second submission
// for the same student and date replaces the first.
func (r *ActivityRepository) Upsert(ctx context.Context, a *models.DailyActivity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO daily_activities (id, student_id, teacher_id, date, rhymes, activities,
        food_habits, nap_status, behavior_notes, homework, remarks, created_at)
        VALUES (:id, :student_id, :teacher_id, :date, :rhymes, :activities,
        :food_habits, :nap_status, :behavior_notes, :homework, :remarks, :created_at)
        ON CONFLICT (student_id, date)
        DO UPDATE SET teacher_id = EXCLUDED.teacher_id, rhymes = EXCLUDED.rhymes,
        activities = EXCLUDED.activities, food_habits = EXCLUDED.food_habits,
        nap_status = EXCLUDED.nap_status, behavior_notes = EXCLUDED.behavior_notes,
        homework = EXCLUDED.homework, remarks = EXCLUDED.remarks`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("upsert daily activity: %w", err)
	}
	return nil
}

// FindByStudentAndDate returns the note for one student on one date.
func (r *ActivityRepository) FindByStudentAndDate(ctx context.Context, studentID, date string) (*models.DailyActivity, error) {
	query := fmt.Sprintf("SELECT %s FROM daily_activities WHERE student_id = $1 AND date = $2", activityColumns)
	var activity models.DailyActivity
	if err := r.db.GetContext(ctx, &activity, query, studentID, date); err != nil {
		return nil, err
	}
	return &activity, nil
}

// HistoryForStudent returns a student's notes between two dates, newest
// first.
func (r *ActivityRepository) HistoryForStudent(ctx context.Context, studentID, fromDate, toDate string) ([]models.DailyActivity, error) {
	query := fmt.Sprintf(`SELECT %s FROM daily_activities
        WHERE student_id = $1 AND date >= $2 AND date <= $3 ORDER BY date DESC`, activityColumns)
	var activities []models.DailyActivity
	if err := r.db.SelectContext(ctx, &activities, query, studentID, fromDate, toDate); err != nil {
		return nil, fmt.Errorf("activity history: %w", err)
	}
	return activities, nil
}
