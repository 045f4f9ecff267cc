package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/kidscholars/ksis-api/internal/models"
)

func userTestRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "full_name", "mobile", "active", "created_at", "updated_at"})
}

func TestUserRepositoryCreateAndFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{
		Email:        "priya@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         models.RoleParent,
		FullName:     "Priya Kumar",
		Mobile:       "9876543210",
		Active:       true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	require.NotEmpty(t, user.ID)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("priya@example.com").
		WillReturnRows(userTestRows().AddRow(user.ID, user.Email, user.PasswordHash, user.Role, user.FullName, user.Mobile, true, now, now))

	found, err := repo.FindByEmail(context.Background(), "priya@example.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleParent, found.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	role := models.RoleTeacher
	active := true
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, role, full_name")).
		WithArgs(role, active).
		WillReturnRows(userTestRows().AddRow("user-1", "teacher@ksis.local", "hash", role, "Lakshmi N", "", true, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WithArgs(role, active).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	users, total, err := repo.List(context.Background(), models.UserFilter{Role: &role, Active: &active})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, users, 1)
	require.Equal(t, role, users[0].Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDeactivateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET active = false")).
		WithArgs("user-missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), "user-missing")
	require.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryRefreshTokenRoundTrip(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	token := &models.RefreshToken{
		UserID:    "user-1",
		Token:     "opaque-token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, repo.SaveRefreshToken(context.Background(), token))

	mock.ExpectQuery(regexp.QuoteMeta("WHERE token = $1 AND revoked = false")).
		WithArgs("opaque-token").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at", "revoked", "revoked_at", "ip_address", "user_agent"}).
			AddRow(token.ID, "user-1", "opaque-token", token.ExpiresAt, time.Now(), false, nil, "", ""))

	found, err := repo.FindRefreshToken(context.Background(), "opaque-token")
	require.NoError(t, err)
	require.Equal(t, "user-1", found.UserID)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked = true")).
		WithArgs("opaque-token", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RevokeRefreshToken(context.Background(), "opaque-token"))
	require.NoError(t, mock.ExpectationsWereMet())
}
