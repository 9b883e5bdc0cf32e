package http

import (
	"log/slog"
	"net/http"

	"github.com/expensahq/expensa-backend-go/internal/domain/dashboard"
	"github.com/expensahq/expensa-backend-go/internal/handler/http/response"
)

type DashboardHandler interface {
	GetStats(w http.ResponseWriter, r *http.Request)
}

type DashboardHandlerImpl struct {
	dashboardService dashboard.Service
}

func NewDashboardHandler(dashboardService dashboard.Service) DashboardHandler {
	return &DashboardHandlerImpl{
		dashboardService: dashboardService,
	}
}

// GetStats implements DashboardHandler.
func (h *DashboardHandlerImpl) GetStats(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	stats, err := h.dashboardService.GetStats(r.Context(), actor)
	if err != nil {
		slog.Error("Dashboard stats service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, stats)
}
