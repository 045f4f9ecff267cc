package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/internal/models"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
)

// NotificationStore abstracts persistence for in-app notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateForUsers(ctx context.Context, userIDs []string, title, message string) error
	ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// NotificationService serves each user's in-app notifications.
type NotificationService struct {
	notifications NotificationStore
	logger        *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(notifications NotificationStore, logger *zap.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: logger}
}

// ListOwn returns the caller's notifications.
func (s *NotificationService) ListOwn(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, int, error) {
	notifications, err := s.notifications.ListForUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list notifications")
	}
	unread, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "count notifications")
	}
	return notifications, unread, nil
}

// MarkRead marks one of the caller's notifications as read. A foreign
// or missing id fails with NotFound.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.notifications.MarkRead(ctx, id, userID); err != nil {
		return notFoundOr(err, "notification not found")
	}
	return nil
}

// MarkAllRead clears the caller's unread notifications.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "mark notifications read")
	}
	return nil
}

// Broadcast fans a message out to a set of users.
func (s *NotificationService) Broadcast(ctx context.Context, userIDs []string, title, message string) error {
	if title == "" || message == "" {
		return appErrors.Clone(appErrors.ErrValidation, "title and message are required")
	}
	if err := s.notifications.CreateForUsers(ctx, userIDs, title, message); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "broadcast notification")
	}
	return nil
}
