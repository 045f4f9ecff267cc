package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kidscholars/ksis-api/internal/models"
	"github.com/kidscholars/ksis-api/pkg/config"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
)

type mockUserStore struct {
	users   map[string]*models.User
	byEmail map[string]string
	tokens  map[string]*models.RefreshToken
	audits  []models.AuditLog
}

func newMockUserStore(users ...*models.User) *mockUserStore {
	store := &mockUserStore{
		users:   map[string]*models.User{},
		byEmail: map[string]string{},
		tokens:  map[string]*models.RefreshToken{},
	}
	for _, u := range users {
		store.users[u.ID] = u
		store.byEmail[u.Email] = u.ID
	}
	return store
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if id, ok := m.byEmail[email]; ok {
		return m.users[id], nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserStore) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockUserStore) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := m.tokens[token]; ok && !t.Revoked {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserStore) RevokeRefreshToken(ctx context.Context, token string) error {
	if t, ok := m.tokens[token]; ok {
		t.Revoked = true
	}
	return nil
}

func (m *mockUserStore) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	m.audits = append(m.audits, *entry)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        time.Hour,
		RefreshExpiration: 24 * time.Hour,
	}
}

func activeUser(t *testing.T, id, email, password string, role models.UserRole) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		FullName:     "Test User",
		Active:       true,
	}
}

func TestAuthServiceLoginAndValidate(t *testing.T) {
	store := newMockUserStore(activeUser(t, "user-1", "admin@ksis.local", "secret123", models.RoleSuperAdmin))
	svc := NewAuthService(store, testJWTConfig(), validator.New(), zap.NewNop())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@ksis.local",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleSuperAdmin, resp.User.Role)
	require.Len(t, store.audits, 1)
	assert.Equal(t, models.AuditActionLogin, store.audits[0].Action)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleSuperAdmin, claims.Role)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	user := activeUser(t, "user-1", "admin@ksis.local", "secret123", models.RoleSuperAdmin)
	inactive := activeUser(t, "user-2", "gone@ksis.local", "secret123", models.RoleTeacher)
	inactive.Active = false
	store := newMockUserStore(user, inactive)
	svc := NewAuthService(store, testJWTConfig(), validator.New(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@ksis.local", Password: "wrong"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@ksis.local", Password: "secret123"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "gone@ksis.local", Password: "secret123"})
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotates(t *testing.T) {
	store := newMockUserStore(activeUser(t, "user-1", "admin@ksis.local", "secret123", models.RoleSuperAdmin))
	svc := NewAuthService(store, testJWTConfig(), validator.New(), zap.NewNop())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@ksis.local", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The rotated token is spent.
	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshExpired(t *testing.T) {
	store := newMockUserStore(activeUser(t, "user-1", "admin@ksis.local", "secret123", models.RoleSuperAdmin))
	store.tokens["stale"] = &models.RefreshToken{
		UserID:    "user-1",
		Token:     "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	svc := NewAuthService(store, testJWTConfig(), validator.New(), zap.NewNop())

	_, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.True(t, store.tokens["stale"].Revoked)
}

func TestAuthServiceValidateTokenRejectsForged(t *testing.T) {
	store := newMockUserStore(activeUser(t, "user-1", "admin@ksis.local", "secret123", models.RoleSuperAdmin))
	svc := NewAuthService(store, testJWTConfig(), validator.New(), zap.NewNop())
	other := NewAuthService(store, config.JWTConfig{Secret: "other-secret", Expiration: time.Hour}, validator.New(), zap.NewNop())

	login, err := other.Login(context.Background(), models.LoginRequest{Email: "admin@ksis.local", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(login.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
