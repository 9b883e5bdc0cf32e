package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/expensahq/expensa-backend-go/internal/domain/workflow"
	"github.com/expensahq/expensa-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type WorkflowHandler interface {
	CreateWorkflow(w http.ResponseWriter, r *http.Request)
	ListWorkflows(w http.ResponseWriter, r *http.Request)
	GetWorkflow(w http.ResponseWriter, r *http.Request)
	DeleteWorkflow(w http.ResponseWriter, r *http.Request)
	CreateRule(w http.ResponseWriter, r *http.Request)
	ListRules(w http.ResponseWriter, r *http.Request)
	DeleteRule(w http.ResponseWriter, r *http.Request)
}

type WorkflowHandlerImpl struct {
	workflowService workflow.WorkflowService
}

func NewWorkflowHandler(workflowService workflow.WorkflowService) WorkflowHandler {
	return &WorkflowHandlerImpl{
		workflowService: workflowService,
	}
}

// CreateWorkflow implements WorkflowHandler.
func (h *WorkflowHandlerImpl) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var createReq workflow.CreateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		slog.Error("Create workflow decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := createReq.Validate(); err != nil {
		slog.Error("Create workflow validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	workflowResponse, err := h.workflowService.CreateWorkflow(r.Context(), actor.CompanyID, createReq)
	if err != nil {
		slog.Error("Create workflow service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Workflow created successfully", "workflow_id", workflowResponse.ID)
	response.Created(w, "Workflow created successfully", workflowResponse)
}

// ListWorkflows implements WorkflowHandler.
func (h *WorkflowHandlerImpl) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	workflows, err := h.workflowService.ListWorkflows(r.Context(), actor.CompanyID)
	if err != nil {
		slog.Error("List workflows service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, workflows)
}

// GetWorkflow implements WorkflowHandler.
func (h *WorkflowHandlerImpl) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	workflowResponse, err := h.workflowService.GetWorkflow(r.Context(), actor.CompanyID, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, workflowResponse)
}

// DeleteWorkflow implements WorkflowHandler.
func (h *WorkflowHandlerImpl) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.workflowService.DeleteWorkflow(r.Context(), actor.CompanyID, id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Workflow deleted successfully", nil)
}

// CreateRule implements WorkflowHandler.
func (h *WorkflowHandlerImpl) CreateRule(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var createReq workflow.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		slog.Error("Create rule decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := createReq.Validate(); err != nil {
		slog.Error("Create rule validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	ruleResponse, err := h.workflowService.CreateRule(r.Context(), actor.CompanyID, createReq)
	if err != nil {
		slog.Error("Create rule service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Rule created successfully", "rule_id", ruleResponse.ID)
	response.Created(w, "Rule created successfully", ruleResponse)
}

// ListRules implements WorkflowHandler.
func (h *WorkflowHandlerImpl) ListRules(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	rules, err := h.workflowService.ListRules(r.Context(), actor.CompanyID)
	if err != nil {
		slog.Error("List rules service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, rules)
}

// DeleteRule implements WorkflowHandler.
func (h *WorkflowHandlerImpl) DeleteRule(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.workflowService.DeleteRule(r.Context(), actor.CompanyID, id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Rule deleted successfully", nil)
}
