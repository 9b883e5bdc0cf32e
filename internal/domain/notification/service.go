package notification

import (
	"context"
)

// Service defines the notification service interface
type Service interface {
	GetNotifications(ctx context.Context, userID string) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAllAsRead(ctx context.Context, userID string) error
}
