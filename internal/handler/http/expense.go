package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/expensahq/expensa-backend-go/internal/domain/expense"
	"github.com/expensahq/expensa-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// receipt uploads are capped at 10 MB
const maxReceiptSize = 10 << 20

type ExpenseHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Override(w http.ResponseWriter, r *http.Request)
	UploadReceipt(w http.ResponseWriter, r *http.Request)
}

type ExpenseHandlerImpl struct {
	expenseService expense.ExpenseService
}

func NewExpenseHandler(expenseService expense.ExpenseService) ExpenseHandler {
	return &ExpenseHandlerImpl{
		expenseService: expenseService,
	}
}

// Create implements ExpenseHandler.
func (h *ExpenseHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var createReq expense.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		slog.Error("Create expense decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	createReq.EmployeeID = actor.ID
	createReq.CompanyID = actor.CompanyID

	if err := createReq.Validate(); err != nil {
		slog.Error("Create expense validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	expenseResponse, err := h.expenseService.Create(r.Context(), createReq)
	if err != nil {
		slog.Error("Create expense service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Expense submitted successfully", "expense_id", expenseResponse.ID)
	response.Created(w, "Expense submitted successfully", expenseResponse)
}

// List implements ExpenseHandler.
func (h *ExpenseHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	expenses, err := h.expenseService.List(r.Context(), actor)
	if err != nil {
		slog.Error("List expenses service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, expenses)
}

// GetByID implements ExpenseHandler.
func (h *ExpenseHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	expenseResponse, err := h.expenseService.GetByID(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, expenseResponse)
}

// Override implements ExpenseHandler. Admin-only trapdoor around the
// approval chain.
func (h *ExpenseHandlerImpl) Override(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var overrideReq expense.OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&overrideReq); err != nil {
		slog.Error("Override decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := overrideReq.Validate(); err != nil {
		slog.Error("Override validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	expenseResponse, err := h.expenseService.Override(r.Context(), actor, id, overrideReq)
	if err != nil {
		slog.Error("Override service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Expense overridden", "expense_id", id, "decision", overrideReq.Decision)
	response.SuccessWithMessage(w, "Expense status overridden", expenseResponse)
}

// UploadReceipt implements ExpenseHandler.
func (h *ExpenseHandlerImpl) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		slog.Error("Upload receipt parse error", "error", err)
		response.BadRequest(w, "Invalid multipart form", nil)
		return
	}

	file, fileHeader, err := r.FormFile("receipt")
	if err != nil {
		response.HandleError(w, expense.ErrMissingReceipt)
		return
	}
	defer file.Close()

	uploadReq := expense.UploadReceiptRequest{
		ExpenseID:  chi.URLParam(r, "id"),
		ActorID:    actor.ID,
		File:       file,
		FileHeader: fileHeader,
	}

	if err := uploadReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	receiptData, err := h.expenseService.UploadReceipt(r.Context(), uploadReq)
	if err != nil {
		slog.Error("Upload receipt service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Receipt uploaded and processed", "expense_id", uploadReq.ExpenseID)
	response.SuccessWithMessage(w, "Receipt uploaded and processed", receiptData)
}
