package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kidscholars/ksis-api/internal/models"
)

// ApplicationRepository manages persistence for admission applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs an ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, reference_number, tracking_token, branch, student_name, gender, date_of_birth,
        applying_for_class, source, parent_type, parent_name, mobile, email, status, remarks,
        documents_link, payment_receipt_link, admission_number, roll_number, section, academic_year,
        created_at, updated_at`

// Create inserts a new application record.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	const query = `INSERT INTO applications (id, reference_number, tracking_token, branch, student_name, gender, date_of_birth,
        applying_for_class, source, parent_type, parent_name, mobile, email, status, remarks,
        documents_link, payment_receipt_link, admission_number, roll_number, section, academic_year, created_at, updated_at)
        VALUES (:id, :reference_number, :tracking_token, :branch, :student_name, :gender, :date_of_birth,
        :applying_for_class, :source, :parent_type, :parent_name, :mobile, :email, :status, :remarks,
        :documents_link, :payment_receipt_link, :admission_number, :roll_number, :section, :academic_year, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// FindByID fetches an application by ID.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := fmt.Sprintf("SELECT %s FROM applications WHERE id = $1", applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// FindByReferenceAndDOB fetches an application by its public lookup pair.
func (r *ApplicationRepository) FindByReferenceAndDOB(ctx context.Context, referenceNumber, dateOfBirth string) (*models.Application, error) {
	query := fmt.Sprintf("SELECT %s FROM applications WHERE reference_number = $1 AND date_of_birth = $2", applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, referenceNumber, dateOfBirth); err != nil {
		return nil, err
	}
	return &app, nil
}

// FindByTrackingToken fetches the application a capability token refers to.
func (r *ApplicationRepository) FindByTrackingToken(ctx context.Context, token string) (*models.Application, error) {
	query := fmt.Sprintf("SELECT %s FROM applications WHERE tracking_token = $1", applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, token); err != nil {
		return nil, err
	}
	return &app, nil
}

// List returns applications matching the provided filters.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Class != nil {
		conditions = append(conditions, fmt.Sprintf("applying_for_class = $%d", len(args)+1))
		args = append(args, *filter.Class)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(student_name) LIKE $%d OR LOWER(reference_number) LIKE $%d OR LOWER(parent_name) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"created_at":   "created_at",
		"student_name": "student_name",
		"status":       "status",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT %s FROM applications WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		applicationColumns, where, column, order, size, offset)

	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM applications WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return apps, total, nil
}

// Update persists the mutable staff-editable fields.
func (r *ApplicationRepository) Update(ctx context.Context, app *models.Application) error {
	app.UpdatedAt = time.Now().UTC()
	const query = `UPDATE applications SET status = :status, remarks = :remarks, section = :section,
        updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	return nil
}

// SetTrackingToken assigns a tracking token if the application does not
// have one yet. It returns the token that is persisted afterwards, which
// may be a previously assigned one: tokens are immutable once set.
func (r *ApplicationRepository) SetTrackingToken(ctx context.Context, id, token string) (string, error) {
	const query = `UPDATE applications SET tracking_token = $2, updated_at = $3
        WHERE id = $1 AND tracking_token IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id, token, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("set tracking token: %w", err)
	}
	var persisted string
	if err := r.db.GetContext(ctx, &persisted, "SELECT tracking_token FROM applications WHERE id = $1", id); err != nil {
		return "", fmt.Errorf("load tracking token: %w", err)
	}
	return persisted, nil
}

// SetDocumentsLink stores the applicant-submitted document bundle link.
func (r *ApplicationRepository) SetDocumentsLink(ctx context.Context, id, link string) error {
	const query = `UPDATE applications SET documents_link = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, link, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set documents link: %w", err)
	}
	return requireRow(res)
}

// SetPaymentReceiptLink stores the applicant-submitted payment receipt link.
func (r *ApplicationRepository) SetPaymentReceiptLink(ctx context.Context, id, link string) error {
	const query = `UPDATE applications SET payment_receipt_link = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, link, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set payment receipt link: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
