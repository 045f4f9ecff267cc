package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/kidscholars/ksis-api/internal/models"
)

func admitCommand() AdmitCommand {
	return AdmitCommand{
		ApplicationID:      "app-1",
		Section:            "A",
		AcademicYear:       "2026-2027",
		Year:               2026,
		AdmissionNumber:    "ADM-2026-1A2B3C",
		ParentPasswordHash: "$2a$10$hash",
		NotificationTitle:  "Admission Confirmed!",
		NotificationMessage: func(rollNumber string) string {
			return fmt.Sprintf("Congratulations! Asha 100%% Ready has been admitted. Roll Number: %s. Login credentials sent to priya@example.com", rollNumber)
		},
	}
}

func TestAdmissionRepositoryAdmitCreatesParentAndStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAdmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("app-1").
		WillReturnRows(sampleApplicationRow(applicationRows(), "app-1", "KSIS-2026-A1B2C3", models.StatusPaymentPending))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO roll_sequences")).
		WithArgs(models.StandardLKG, "A", "2026-2027").
		WillReturnRows(sqlmock.NewRows([]string{"next_value"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email = $1")).
		WithArgs("priya@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status = $2")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The stored message is exactly what the renderer produced: the roll
	// number is in place and a % in the student name survives verbatim.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Admission Confirmed!",
			"Congratulations! Asha 100% Ready has been admitted. Roll Number: 2026-LKG-A-007. Login credentials sent to priya@example.com",
			false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := repo.Admit(context.Background(), admitCommand())
	require.NoError(t, err)
	require.True(t, result.ParentCreated)
	require.Equal(t, "2026-LKG-A-007", result.RollNumber)
	require.Equal(t, "priya@example.com", result.ParentEmail)
	require.Equal(t, "ADM-2026-1A2B3C", result.Student.AdmissionNumber)
	require.True(t, result.Student.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryAdmitReusesParent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAdmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("app-1").
		WillReturnRows(sampleApplicationRow(applicationRows(), "app-1", "KSIS-2026-A1B2C3", models.StatusDocumentsVerified))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO roll_sequences")).
		WithArgs(models.StandardLKG, "A", "2026-2027").
		WillReturnRows(sqlmock.NewRows([]string{"next_value"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email = $1")).
		WithArgs("priya@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("parent-1"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status = $2")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := repo.Admit(context.Background(), admitCommand())
	require.NoError(t, err)
	require.False(t, result.ParentCreated)
	require.Equal(t, "parent-1", result.ParentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryAdmitRejectsAdmitted(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAdmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("app-1").
		WillReturnRows(sampleApplicationRow(applicationRows(), "app-1", "KSIS-2026-A1B2C3", models.StatusAdmitted))
	mock.ExpectRollback()

	_, err := repo.Admit(context.Background(), admitCommand())
	require.ErrorIs(t, err, ErrAlreadyAdmitted)
	require.NoError(t, mock.ExpectationsWereMet())
}
