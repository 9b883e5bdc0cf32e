package dashboard

import (
	"context"

	"github.com/expensahq/expensa-backend-go/internal/domain/dashboard"
	"github.com/expensahq/expensa-backend-go/internal/domain/user"
)

type DashboardServiceImpl struct {
	dashboard.Repository
}

func NewDashboardService(repo dashboard.Repository) dashboard.Service {
	return &DashboardServiceImpl{
		Repository: repo,
	}
}

// GetStats implements dashboard.Service.
func (s *DashboardServiceImpl) GetStats(ctx context.Context, actor user.User) (dashboard.StatsResponse, error) {
	switch actor.Role {
	case user.RoleAdmin:
		return s.Repository.GetCompanyStats(ctx, actor.CompanyID)
	case user.RoleManager:
		return s.Repository.GetManagerStats(ctx, actor.ID)
	default:
		return s.Repository.GetEmployeeStats(ctx, actor.ID)
	}
}
