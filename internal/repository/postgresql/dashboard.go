package postgresql

import (
	"context"

	"github.com/expensahq/expensa-backend-go/internal/domain/dashboard"
	"github.com/expensahq/expensa-backend-go/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.Repository {
	return &dashboardRepositoryImpl{db: db}
}

const statsSelect = `
	SELECT
		COUNT(*) FILTER (WHERE e.status IN ('pending', 'in_progress')),
		COUNT(*) FILTER (WHERE e.status = 'approved'),
		COUNT(*) FILTER (WHERE e.status = 'rejected'),
		COALESCE(SUM(e.amount) FILTER (WHERE e.status = 'approved'), 0)
	FROM expenses e
`

// GetEmployeeStats implements dashboard.Repository.
func (r *dashboardRepositoryImpl) GetEmployeeStats(ctx context.Context, employeeID string) (dashboard.StatsResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := statsSelect + `WHERE e.employee_id = $1`

	var stats dashboard.StatsResponse
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&stats.PendingCount,
		&stats.ApprovedCount,
		&stats.RejectedCount,
		&stats.TotalApprovedAmount,
	)
	if err != nil {
		return dashboard.StatsResponse{}, err
	}
	return stats, nil
}

// GetManagerStats implements dashboard.Repository. Scope is the manager's
// direct reports, not the manager's own expenses.
func (r *dashboardRepositoryImpl) GetManagerStats(ctx context.Context, managerID string) (dashboard.StatsResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := statsSelect + `
		INNER JOIN users u ON e.employee_id = u.id
		WHERE u.manager_id = $1`

	var stats dashboard.StatsResponse
	err := q.QueryRow(ctx, query, managerID).Scan(
		&stats.PendingCount,
		&stats.ApprovedCount,
		&stats.RejectedCount,
		&stats.TotalApprovedAmount,
	)
	if err != nil {
		return dashboard.StatsResponse{}, err
	}
	return stats, nil
}

// GetCompanyStats implements dashboard.Repository.
func (r *dashboardRepositoryImpl) GetCompanyStats(ctx context.Context, companyID string) (dashboard.StatsResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := statsSelect + `WHERE e.company_id = $1`

	var stats dashboard.StatsResponse
	err := q.QueryRow(ctx, query, companyID).Scan(
		&stats.PendingCount,
		&stats.ApprovedCount,
		&stats.RejectedCount,
		&stats.TotalApprovedAmount,
	)
	if err != nil {
		return dashboard.StatsResponse{}, err
	}
	return stats, nil
}
