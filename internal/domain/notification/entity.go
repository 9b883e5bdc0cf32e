package notification

import (
	"time"
)

// Notification is a fire-and-forget message to a user. It has no back-effect
// on the approval workflow.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
