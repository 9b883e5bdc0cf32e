package dashboard

import (
	"context"
)

// Repository aggregates expense statistics per visibility scope.
type Repository interface {
	GetEmployeeStats(ctx context.Context, employeeID string) (StatsResponse, error)
	GetManagerStats(ctx context.Context, managerID string) (StatsResponse, error)
	GetCompanyStats(ctx context.Context, companyID string) (StatsResponse, error)
}
