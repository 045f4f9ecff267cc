package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/kidscholars/ksis-api/internal/models"
)

// StudentRepository manages persistence for admitted students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, admission_number, roll_number, student_name, gender, date_of_birth,
        current_class, section, academic_year, parent_id, application_id, active, created_at`

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByParent returns every student linked to a parent account.
func (r *StudentRepository) FindByParent(ctx context.Context, parentID string) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE parent_id = $1 AND active = true ORDER BY created_at", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, parentID); err != nil {
		return nil, fmt.Errorf("find students by parent: %w", err)
	}
	return students, nil
}

// FindByCohort returns the active students of one standard/section in an
// academic year, ordered by roll number.
func (r *StudentRepository) FindByCohort(ctx context.Context, standard models.Standard, section, academicYear string) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students
        WHERE current_class = $1 AND section = $2 AND academic_year = $3 AND active = true
        ORDER BY roll_number`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, standard, section, academicYear); err != nil {
		return nil, fmt.Errorf("find students by cohort: %w", err)
	}
	return students, nil
}

// List returns students matching the filter.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Class != nil {
		conditions = append(conditions, fmt.Sprintf("current_class = $%d", len(args)+1))
		args = append(args, *filter.Class)
	}
	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.ParentID != "" {
		conditions = append(conditions, fmt.Sprintf("parent_id = $%d", len(args)+1))
		args = append(args, filter.ParentID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(student_name) LIKE $%d OR LOWER(roll_number) LIKE $%d OR LOWER(admission_number) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	where := strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"created_at":   "created_at",
		"student_name": "student_name",
		"roll_number":  "roll_number",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "roll_number"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		studentColumns, where, column, order, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// Update persists mutable student fields (class moves, deactivation).
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET student_name = :student_name, current_class = :current_class,
        section = :section, academic_year = :academic_year, active = :active WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}
