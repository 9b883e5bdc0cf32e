package dashboard

import (
	"context"

	"github.com/expensahq/expensa-backend-go/internal/domain/user"
)

// Service resolves the stats scope from the requesting user's role.
type Service interface {
	GetStats(ctx context.Context, actor user.User) (StatsResponse, error)
}
