package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/kidscholars/ksis-api/internal/models"
)

func studentTestRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "admission_number", "roll_number", "student_name", "gender", "date_of_birth",
		"current_class", "section", "academic_year", "parent_id", "application_id", "active", "created_at",
	})
}

func addStudentRow(rows *sqlmock.Rows, id, roll string) *sqlmock.Rows {
	return rows.AddRow(id, "ADM-2026-1A2B3C", roll, "Asha Kumar", "female", "2021-06-14",
		"lkg", "A", "2026-2027", "parent-1", "app-1", true, time.Now())
}

func TestStudentRepositoryFindByParent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE parent_id = $1 AND active = true")).
		WithArgs("parent-1").
		WillReturnRows(addStudentRow(studentTestRows(), "student-1", "2026-LKG-A-001"))

	students, err := repo.FindByParent(context.Background(), "parent-1")
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, "2026-LKG-A-001", students[0].RollNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByCohortOrdersByRoll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	rows := addStudentRow(studentTestRows(), "student-1", "2026-LKG-A-001")
	rows = addStudentRow(rows, "student-2", "2026-LKG-A-002")
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY roll_number")).
		WithArgs(models.StandardLKG, "A", "2026-2027").
		WillReturnRows(rows)

	students, err := repo.FindByCohort(context.Background(), models.StandardLKG, "A", "2026-2027")
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.Equal(t, "2026-LKG-A-001", students[0].RollNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	class := models.StandardLKG
	active := true
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, admission_number, roll_number")).
		WithArgs(class, "A", active).
		WillReturnRows(addStudentRow(studentTestRows(), "student-1", "2026-LKG-A-001"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
		WithArgs(class, "A", active).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{
		Class:   &class,
		Section: "A",
		Active:  &active,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, students, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
