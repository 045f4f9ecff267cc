package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kidscholars/ksis-api/internal/models"
)

// AttendanceRepository manages persistence for daily attendance.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, student_id, date, status, teacher_id, remarks, created_at`

// Upsert records attendance for one student on one date. Marking the
// same student twice for a date overwrites the earlier record.
func (r *AttendanceRepository) Upsert(ctx context.Context, a *models.Attendance) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO attendance (id, student_id, date, status, teacher_id, remarks, created_at)
        VALUES (:id, :student_id, :date, :status, :teacher_id, :remarks, :created_at)
        ON CONFLICT (student_id, date)
        DO UPDATE SET status = EXCLUDED.status, teacher_id = EXCLUDED.teacher_id, remarks = EXCLUDED.remarks`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// FindByStudentsAndDate returns the attendance records for a set of
// students on one date, keyed by student ID.
func (r *AttendanceRepository) FindByStudentsAndDate(ctx context.Context, studentIDs []string, date string) (map[string]models.Attendance, error) {
	result := make(map[string]models.Attendance, len(studentIDs))
	if len(studentIDs) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(
		fmt.Sprintf("SELECT %s FROM attendance WHERE student_id IN (?) AND date = ?", attendanceColumns),
		studentIDs, date)
	if err != nil {
		return nil, fmt.Errorf("build attendance query: %w", err)
	}
	query = r.db.Rebind(query)

	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("find attendance by date: %w", err)
	}
	for _, rec := range records {
		result[rec.StudentID] = rec
	}
	return result, nil
}

// HistoryForStudent returns a student's attendance between two dates,
// newest first.
func (r *AttendanceRepository) HistoryForStudent(ctx context.Context, studentID, fromDate, toDate string) ([]models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance
        WHERE student_id = $1 AND date >= $2 AND date <= $3 ORDER BY date DESC`, attendanceColumns)
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, studentID, fromDate, toDate); err != nil {
		return nil, fmt.Errorf("attendance history: %w", err)
	}
	return records, nil
}

// MonthlySummary counts a student's statuses within a date range.
func (r *AttendanceRepository) MonthlySummary(ctx context.Context, studentID, fromDate, toDate string) (map[models.AttendanceStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS count FROM attendance
        WHERE student_id = $1 AND date >= $2 AND date <= $3 GROUP BY status`
	rows := []struct {
		Status models.AttendanceStatus `db:"status"`
		Count  int                     `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, studentID, fromDate, toDate); err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}
	summary := make(map[models.AttendanceStatus]int, len(rows))
	for _, row := range rows {
		summary[row.Status] = row.Count
	}
	return summary, nil
}
