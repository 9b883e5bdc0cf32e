package notification

import (
	"context"
	"fmt"

	"github.com/expensahq/expensa-backend-go/internal/domain/notification"
)

type NotificationServiceImpl struct {
	notification.Repository
}

func NewNotificationService(repo notification.Repository) notification.Service {
	return &NotificationServiceImpl{
		Repository: repo,
	}
}

// GetNotifications implements notification.Service.
func (s *NotificationServiceImpl) GetNotifications(ctx context.Context, userID string) (*notification.NotificationListResponse, error) {
	notifications, err := s.Repository.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}

	unreadCount, err := s.Repository.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unread count: %w", err)
	}

	responses := make([]notification.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, n.ToResponse())
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		UnreadCount:   unreadCount,
	}, nil
}

// GetUnreadCount implements notification.Service.
func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.Repository.GetUnreadCount(ctx, userID)
}

// MarkAllAsRead implements notification.Service.
func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.Repository.MarkAllAsRead(ctx, userID)
}
