package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/models"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
)

// UserAdminStore abstracts persistence for user administration.
type UserAdminStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Deactivate(ctx context.Context, id string) error
	RevokeUserTokens(ctx context.Context, userID string) error
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

// UserService handles user administration.
type UserService struct {
	users    UserAdminStore
	hasher   PasswordHasher
	validate *validator.Validate
	logger   *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users UserAdminStore, hasher PasswordHasher, validate *validator.Validate, logger *zap.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, validate: validate, logger: logger}
}

// Create adds a new account. Duplicate email fails with Conflict.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest, actorID string) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lookup user")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "hash password")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.UserRole(req.Role),
		FullName:     req.FullName,
		Mobile:       req.Mobile,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create user")
	}

	_ = s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionUserCreate,
		Resource:   "users",
		ResourceID: &user.ID,
	})
	return user, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return user, nil
}

// List returns users for the admin console.
func (s *UserService) List(ctx context.Context, query dto.ListUsersQuery) ([]models.User, *models.Pagination, error) {
	filter := models.UserFilter{
		Active:    query.Active,
		Search:    query.Search,
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if query.Role != "" {
		role := models.UserRole(query.Role)
		filter.Role = &role
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list users")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Update edits the profile fields present in the request.
func (s *UserService) Update(ctx context.Context, id string, req dto.UpdateUserRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Mobile != nil {
		user.Mobile = *req.Mobile
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update user")
	}
	return user, nil
}

// ResetPassword sets a new password on behalf of an admin, revoking the
// user's sessions.
func (s *UserService) ResetPassword(ctx context.Context, id string, req dto.ResetPasswordRequest, actorID string) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return notFoundOr(err, "user not found")
	}
	if err := s.users.RevokeUserTokens(ctx, id); err != nil {
		s.logger.Warn("revoke sessions after reset", zap.String("user_id", id), zap.Error(err))
	}
	_ = s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionPasswordChange,
		Resource:   "users",
		ResourceID: &id,
	})
	return nil
}

// ChangePassword rotates the caller's own password after verifying the
// current one.
func (s *UserService) ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "user not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "current password is incorrect")
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update password")
	}
	return nil
}

// Delete deactivates a user and revokes their sessions. The record is
// kept for the audit trail.
func (s *UserService) Delete(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return appErrors.Clone(appErrors.ErrValidation, "cannot delete your own account")
	}
	if err := s.users.Deactivate(ctx, id); err != nil {
		return notFoundOr(err, "user not found")
	}
	if err := s.users.RevokeUserTokens(ctx, id); err != nil {
		s.logger.Warn("revoke sessions after delete", zap.String("user_id", id), zap.Error(err))
	}
	_ = s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionUserDelete,
		Resource:   "users",
		ResourceID: &id,
	})
	return nil
}
