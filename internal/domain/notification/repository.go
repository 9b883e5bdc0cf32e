package notification

import (
	"context"
)

// Repository defines the notification repository interface. Create is safe to
// call inside a transaction via the repository's querier resolution, which is
// how the approval workflow emits notifications atomically with its state
// changes.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByUserID(ctx context.Context, userID string) ([]*Notification, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAllAsRead(ctx context.Context, userID string) error
}
