package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kidscholars/ksis-api/internal/models"
)

// ErrAlreadyAdmitted is returned when the application row is already in
// the admitted state at commit time.
var ErrAlreadyAdmitted = errors.New("application already admitted")

// AdmitCommand carries everything the admission transaction needs.
type AdmitCommand struct {
	ApplicationID   string
	Section         string
	AcademicYear    string
	Year            int
	AdmissionNumber string
	// ParentPasswordHash is used only when no account exists for the
	// application's email yet.
	ParentPasswordHash string
	NotificationTitle  string
	// NotificationMessage renders the parent notification body once the
	// roll number has been assigned inside the transaction.
	NotificationMessage func(rollNumber string) string
}

// AdmitResult reports what the transaction created.
type AdmitResult struct {
	Student       models.Student
	ParentID      string
	ParentEmail   string
	ParentCreated bool
	RollNumber    string
}

// AdmissionRepository executes the application-to-student promotion as a
// single database transaction: roll sequence, parent account, student
// row, application update and parent notification commit or roll back
// together, so a concurrent admission can never duplicate a roll number
// or a student.
type AdmissionRepository struct {
	db *sqlx.DB
}

// NewAdmissionRepository constructs an AdmissionRepository.
func NewAdmissionRepository(db *sqlx.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

// Admit promotes the application into a student record.
func (r *AdmissionRepository) Admit(ctx context.Context, cmd AdmitCommand) (*AdmitResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin admission: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Lock the application row for the duration of the transaction.
	var app models.Application
	lockQuery := fmt.Sprintf("SELECT %s FROM applications WHERE id = $1 FOR UPDATE", applicationColumns)
	if err := tx.GetContext(ctx, &app, lockQuery, cmd.ApplicationID); err != nil {
		return nil, err
	}
	if app.Status == models.StatusAdmitted {
		return nil, ErrAlreadyAdmitted
	}

	seq, err := nextRollSequence(ctx, tx, app.ApplyingForClass, cmd.Section, cmd.AcademicYear)
	if err != nil {
		return nil, err
	}
	rollNumber := models.FormatRollNumber(cmd.Year, app.ApplyingForClass, cmd.Section, seq)

	parentID, parentCreated, err := ensureParent(ctx, tx, &app, cmd.ParentPasswordHash)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	student := models.Student{
		ID:              uuid.NewString(),
		AdmissionNumber: cmd.AdmissionNumber,
		RollNumber:      rollNumber,
		StudentName:     app.StudentName,
		Gender:          app.Gender,
		DateOfBirth:     app.DateOfBirth,
		CurrentClass:    app.ApplyingForClass,
		Section:         cmd.Section,
		AcademicYear:    cmd.AcademicYear,
		ParentID:        parentID,
		ApplicationID:   app.ID,
		Active:          true,
		CreatedAt:       now,
	}
	const insertStudent = `INSERT INTO students (id, admission_number, roll_number, student_name, gender, date_of_birth,
        current_class, section, academic_year, parent_id, application_id, active, created_at)
        VALUES (:id, :admission_number, :roll_number, :student_name, :gender, :date_of_birth,
        :current_class, :section, :academic_year, :parent_id, :application_id, :active, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertStudent, student); err != nil {
		return nil, fmt.Errorf("insert student: %w", err)
	}

	const updateApp = `UPDATE applications SET status = $2, admission_number = $3, roll_number = $4,
        section = $5, academic_year = $6, updated_at = $7 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateApp, app.ID, models.StatusAdmitted,
		cmd.AdmissionNumber, rollNumber, cmd.Section, cmd.AcademicYear, now); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	notification := models.Notification{
		ID:        uuid.NewString(),
		UserID:    parentID,
		Title:     cmd.NotificationTitle,
		Message:   cmd.NotificationMessage(rollNumber),
		IsRead:    false,
		CreatedAt: now,
	}
	const insertNotification = `INSERT INTO notifications (id, user_id, title, message, is_read, created_at)
        VALUES (:id, :user_id, :title, :message, :is_read, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertNotification, notification); err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit admission: %w", err)
	}

	return &AdmitResult{
		Student:       student,
		ParentID:      parentID,
		ParentEmail:   app.Email,
		ParentCreated: parentCreated,
		RollNumber:    rollNumber,
	}, nil
}

// nextRollSequence atomically increments and returns the per-cohort
// counter. The upsert keeps assignment dense even under concurrency.
func nextRollSequence(ctx context.Context, tx *sqlx.Tx, standard models.Standard, section, academicYear string) (int, error) {
	const query = `INSERT INTO roll_sequences (standard, section, academic_year, next_value)
        VALUES ($1, $2, $3, 1)
        ON CONFLICT (standard, section, academic_year)
        DO UPDATE SET next_value = roll_sequences.next_value + 1
        RETURNING next_value`
	var seq int
	if err := tx.GetContext(ctx, &seq, query, standard, section, academicYear); err != nil {
		return 0, fmt.Errorf("next roll sequence: %w", err)
	}
	return seq, nil
}

// ensureParent resolves the parent account for the application's email,
// creating one with the provided password hash on first admission.
func ensureParent(ctx context.Context, tx *sqlx.Tx, app *models.Application, passwordHash string) (string, bool, error) {
	var parentID string
	err := tx.GetContext(ctx, &parentID, "SELECT id FROM users WHERE email = $1", app.Email)
	if err == nil {
		return parentID, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("find parent: %w", err)
	}

	now := time.Now().UTC()
	parent := models.User{
		ID:           uuid.NewString(),
		Email:        app.Email,
		PasswordHash: passwordHash,
		Role:         models.RoleParent,
		FullName:     app.ParentName,
		Mobile:       app.Mobile,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	const insertParent = `INSERT INTO users (id, email, password_hash, role, full_name, mobile, active, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :role, :full_name, :mobile, :active, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertParent, parent); err != nil {
		return "", false, fmt.Errorf("create parent account: %w", err)
	}
	return parent.ID, true, nil
}
