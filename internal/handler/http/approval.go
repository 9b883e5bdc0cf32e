package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/expensahq/expensa-backend-go/internal/domain/expense"
	"github.com/expensahq/expensa-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ApprovalHandler interface {
	ListPending(w http.ResponseWriter, r *http.Request)
	Act(w http.ResponseWriter, r *http.Request)
}

type ApprovalHandlerImpl struct {
	approvalService expense.ApprovalService
}

func NewApprovalHandler(approvalService expense.ApprovalService) ApprovalHandler {
	return &ApprovalHandlerImpl{
		approvalService: approvalService,
	}
}

// ListPending implements ApprovalHandler. The caller's approval inbox.
func (h *ApprovalHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	approvals, err := h.approvalService.ListPending(r.Context(), actor.ID)
	if err != nil {
		slog.Error("List pending approvals service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, approvals)
}

// Act implements ApprovalHandler. Records one decision and advances the
// expense's approval state machine.
func (h *ApprovalHandlerImpl) Act(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var actionReq expense.ApprovalActionRequest
	if err := json.NewDecoder(r.Body).Decode(&actionReq); err != nil {
		slog.Error("Approval action decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	actionReq.ActorID = actor.ID

	if err := actionReq.Validate(); err != nil {
		slog.Error("Approval action validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	approvalResponse, err := h.approvalService.Act(r.Context(), id, actionReq)
	if err != nil {
		slog.Error("Approval action service error", "error", err, "approval_id", id)
		response.HandleError(w, err)
		return
	}

	slog.Info("Approval processed", "approval_id", id, "decision", actionReq.Decision)
	response.SuccessWithMessage(w, "Approval processed", approvalResponse)
}
