package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kidscholars/ksis-api/internal/models"
)

// DashboardRepository aggregates counters for the admin dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// ApplicationCounts returns the total and a per-status breakdown.
func (r *DashboardRepository) ApplicationCounts(ctx context.Context) (int, map[models.ApplicationStatus]int, error) {
	rows := []struct {
		Status models.ApplicationStatus `db:"status"`
		Count  int                      `db:"count"`
	}{}
	const query = `SELECT status, COUNT(*) AS count FROM applications GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return 0, nil, fmt.Errorf("application counts: %w", err)
	}
	total := 0
	byStatus := make(map[models.ApplicationStatus]int, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row.Count
		total += row.Count
	}
	return total, byStatus, nil
}

// StudentCounts returns the active student total and per-class breakdown.
func (r *DashboardRepository) StudentCounts(ctx context.Context) (int, map[models.Standard]int, error) {
	rows := []struct {
		Class models.Standard `db:"current_class"`
		Count int             `db:"count"`
	}{}
	const query = `SELECT current_class, COUNT(*) AS count FROM students WHERE active = true GROUP BY current_class`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return 0, nil, fmt.Errorf("student counts: %w", err)
	}
	total := 0
	byClass := make(map[models.Standard]int, len(rows))
	for _, row := range rows {
		byClass[row.Class] = row.Count
		total += row.Count
	}
	return total, byClass, nil
}

// AttendanceToday returns present/absent counts for one date.
func (r *DashboardRepository) AttendanceToday(ctx context.Context, date string) (map[models.AttendanceStatus]int, error) {
	rows := []struct {
		Status models.AttendanceStatus `db:"status"`
		Count  int                     `db:"count"`
	}{}
	const query = `SELECT status, COUNT(*) AS count FROM attendance WHERE date = $1 GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("attendance today: %w", err)
	}
	counts := make(map[models.AttendanceStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// FeesCollected sums settled payments across all students.
func (r *DashboardRepository) FeesCollected(ctx context.Context) (int, error) {
	var total int
	const query = `SELECT COALESCE(SUM(amount), 0) FROM fee_payments WHERE payment_status = $1`
	if err := r.db.GetContext(ctx, &total, query, models.PaymentPaid); err != nil {
		return 0, fmt.Errorf("fees collected: %w", err)
	}
	return total, nil
}

// RecentApplications returns the latest enquiries for the dashboard feed.
func (r *DashboardRepository) RecentApplications(ctx context.Context, limit int) ([]models.Application, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := fmt.Sprintf("SELECT %s FROM applications ORDER BY created_at DESC LIMIT %d", applicationColumns, limit)
	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query); err != nil {
		return nil, fmt.Errorf("recent applications: %w", err)
	}
	return apps, nil
}
