package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/expensahq/expensa-backend-go/internal/domain/company"
	"github.com/expensahq/expensa-backend-go/internal/handler/http/response"
)

type CompanyHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type CompanyHandlerImpl struct {
	companyService company.CompanyService
}

func NewCompanyHandler(companyService company.CompanyService) CompanyHandler {
	return &CompanyHandlerImpl{
		companyService: companyService,
	}
}

// Get implements CompanyHandler. Returns the caller's own company.
func (h *CompanyHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	companyResponse, err := h.companyService.GetByID(r.Context(), actor.CompanyID)
	if err != nil {
		slog.Error("Get company service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, companyResponse)
}

// Update implements CompanyHandler.
func (h *CompanyHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var updateReq company.UpdateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		slog.Error("Update company decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := updateReq.Validate(); err != nil {
		slog.Error("Update company validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	if err := h.companyService.Update(r.Context(), actor.CompanyID, updateReq); err != nil {
		slog.Error("Update company service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Company updated successfully", nil)
}
