package main

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidscholars/ksis-api/internal/repository"
	"github.com/kidscholars/ksis-api/internal/service"
	"github.com/kidscholars/ksis-api/pkg/config"
	"go.uber.org/zap"
)

func newBootstrapMock(t *testing.T) (*repository.UserRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return repository.NewUserRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func bootstrapAppConfig() config.AppConfig {
	return config.AppConfig{AdminEmail: "admin@kidscholars.example.com", AdminPassword: "bootstrap-secret"}
}

func TestBootstrapAdminSkipsExisting(t *testing.T) {
	users, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("admin@kidscholars.example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "full_name", "mobile", "active", "created_at", "updated_at"}).
			AddRow("admin-1", "admin@kidscholars.example.com", "$2a$10$hash", "super_admin", "Administrator", "", true, now, now))

	err := bootstrapAdmin(context.Background(), users, service.BcryptHasher{}, bootstrapAppConfig(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrapAdminCreatesWhenMissing(t *testing.T) {
	users, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("admin@kidscholars.example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := bootstrapAdmin(context.Background(), users, service.BcryptHasher{}, bootstrapAppConfig(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrapAdminPropagatesLookupFailure(t *testing.T) {
	users, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	lookupErr := errors.New("connection reset by peer")
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("admin@kidscholars.example.com").
		WillReturnError(lookupErr)

	// A flaky lookup must not be mistaken for an absent admin: no insert
	// is attempted and the error surfaces.
	err := bootstrapAdmin(context.Background(), users, service.BcryptHasher{}, bootstrapAppConfig(), zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, lookupErr)
	require.NoError(t, mock.ExpectationsWereMet())
}
