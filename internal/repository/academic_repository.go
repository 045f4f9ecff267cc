package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kidscholars/ksis-api/internal/models"
)

// AcademicRepository manages academic years, sections and teacher
// assignments.
type AcademicRepository struct {
	db *sqlx.DB
}

// NewAcademicRepository constructs an AcademicRepository.
func NewAcademicRepository(db *sqlx.DB) *AcademicRepository {
	return &AcademicRepository{db: db}
}

// CreateYear inserts a new academic year.
func (r *AcademicRepository) CreateYear(ctx context.Context, year *models.AcademicYear) error {
	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	year.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO academic_years (id, year, active, created_at)
        VALUES (:id, :year, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, year); err != nil {
		return fmt.Errorf("create academic year: %w", err)
	}
	return nil
}

// ListYears returns every academic year, newest first.
func (r *AcademicRepository) ListYears(ctx context.Context) ([]models.AcademicYear, error) {
	var years []models.AcademicYear
	const query = `SELECT id, year, active, created_at FROM academic_years ORDER BY year DESC`
	if err := r.db.SelectContext(ctx, &years, query); err != nil {
		return nil, fmt.Errorf("list academic years: %w", err)
	}
	return years, nil
}

// ActiveYear returns the currently active academic year.
func (r *AcademicRepository) ActiveYear(ctx context.Context) (*models.AcademicYear, error) {
	var year models.AcademicYear
	const query = `SELECT id, year, active, created_at FROM academic_years WHERE active = true LIMIT 1`
	if err := r.db.GetContext(ctx, &year, query); err != nil {
		return nil, err
	}
	return &year, nil
}

// ActivateYear makes one year active and deactivates the rest, in a
// single transaction so exactly one year is active afterwards.
func (r *AcademicRepository) ActivateYear(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activate year: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "UPDATE academic_years SET active = false WHERE active = true"); err != nil {
		return fmt.Errorf("deactivate years: %w", err)
	}
	res, err := tx.ExecContext(ctx, "UPDATE academic_years SET active = true WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("activate year: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateSection inserts a section for a standard and year.
func (r *AcademicRepository) CreateSection(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	section.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO sections (id, standard, section_name, capacity, academic_year, teacher_id, created_at)
        VALUES (:id, :standard, :section_name, :capacity, :academic_year, :teacher_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// ListSections returns sections for an academic year, optionally
// restricted to one standard.
func (r *AcademicRepository) ListSections(ctx context.Context, academicYear string, standard *models.Standard) ([]models.Section, error) {
	query := `SELECT id, standard, section_name, capacity, academic_year, teacher_id, created_at
        FROM sections WHERE academic_year = $1`
	args := []interface{}{academicYear}
	if standard != nil {
		query += " AND standard = $2"
		args = append(args, *standard)
	}
	query += " ORDER BY standard, section_name"

	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// CreateAssignment links a teacher to a cohort.
func (r *AcademicRepository) CreateAssignment(ctx context.Context, assignment *models.TeacherAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO teacher_assignments (id, teacher_id, standard, section, academic_year, is_class_teacher, created_at)
        VALUES (:id, :teacher_id, :standard, :section, :academic_year, :is_class_teacher, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create teacher assignment: %w", err)
	}
	return nil
}

// AssignmentsForTeacher returns a teacher's cohorts for one year.
func (r *AcademicRepository) AssignmentsForTeacher(ctx context.Context, teacherID, academicYear string) ([]models.TeacherAssignment, error) {
	const query = `SELECT id, teacher_id, standard, section, academic_year, is_class_teacher, created_at
        FROM teacher_assignments WHERE teacher_id = $1 AND academic_year = $2 ORDER BY standard, section`
	var assignments []models.TeacherAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, teacherID, academicYear); err != nil {
		return nil, fmt.Errorf("assignments for teacher: %w", err)
	}
	return assignments, nil
}

// HasAssignment reports whether the teacher is assigned to the cohort.
func (r *AcademicRepository) HasAssignment(ctx context.Context, teacherID string, standard models.Standard, section, academicYear string) (bool, error) {
	var count int
	const query = `SELECT COUNT(*) FROM teacher_assignments
        WHERE teacher_id = $1 AND standard = $2 AND section = $3 AND academic_year = $4`
	if err := r.db.GetContext(ctx, &count, query, teacherID, standard, section, academicYear); err != nil {
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return count > 0, nil
}

// DeleteAssignment removes one teacher assignment.
func (r *AcademicRepository) DeleteAssignment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM teacher_assignments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete teacher assignment: %w", err)
	}
	return requireRow(res)
}
