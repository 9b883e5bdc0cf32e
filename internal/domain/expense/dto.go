package expense

import (
	"mime/multipart"
	"time"

	"github.com/expensahq/expensa-backend-go/internal/pkg/validator"
)

// ============= Request DTOs =============

type CreateExpenseRequest struct {
	// Set from JWT claims, never from the request body
	EmployeeID string `json:"-"`
	CompanyID  string `json:"-"`

	WorkflowID  *string `json:"workflow_id,omitempty"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

func (r *CreateExpenseRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Amount <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "amount",
			Message: "amount must be greater than zero",
		})
	}
	if !validator.IsValidCurrencyCode(r.Currency) {
		errs = append(errs, validator.ValidationError{
			Field:   "currency",
			Message: "currency must be a 3-letter uppercase code",
		})
	}
	if validator.IsEmpty(r.Category) {
		errs = append(errs, validator.ValidationError{
			Field:   "category",
			Message: "category is required",
		})
	}
	if r.WorkflowID != nil && !validator.IsValidUUID(*r.WorkflowID) {
		errs = append(errs, validator.ValidationError{
			Field:   "workflow_id",
			Message: "workflow_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ApprovalActionRequest carries one approver decision.
type ApprovalActionRequest struct {
	// Set from JWT claims
	ActorID string `json:"-"`

	Decision Decision `json:"decision"`
	Comment  string   `json:"comment"`
}

func (r *ApprovalActionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Decision.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be 'approved' or 'rejected'",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// OverrideRequest is the administrative trapdoor around the approval chain.
type OverrideRequest struct {
	Decision Decision `json:"decision"`
}

func (r *OverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Decision.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be 'approved' or 'rejected'",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UploadReceiptRequest struct {
	ExpenseID string                `json:"-"`
	ActorID   string                `json:"-"`
	File      multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *UploadReceiptRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FileHeader == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "receipt",
			Message: "receipt file is required",
		})
	} else if r.FileHeader.Size > 10<<20 { // 10MB
		errs = append(errs, validator.ValidationError{
			Field:   "receipt",
			Message: "receipt size must not exceed 10MB",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ============= Response DTOs =============

type ApprovalResponse struct {
	ID           string         `json:"id"`
	ExpenseID    string         `json:"expense_id"`
	ApproverID   string         `json:"approver_id"`
	ApproverName *string        `json:"approver_name,omitempty"`
	Sequence     int            `json:"sequence"`
	Status       ApprovalStatus `json:"status"`
	Comment      *string        `json:"comment,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (a *Approval) ToResponse() ApprovalResponse {
	return ApprovalResponse{
		ID:           a.ID,
		ExpenseID:    a.ExpenseID,
		ApproverID:   a.ApproverID,
		ApproverName: a.ApproverName,
		Sequence:     a.Sequence,
		Status:       a.Status,
		Comment:      a.Comment,
		UpdatedAt:    a.UpdatedAt,
	}
}

type ExpenseResponse struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName *string   `json:"employee_name,omitempty"`
	WorkflowID   *string   `json:"workflow_id,omitempty"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	ReceiptURL   *string   `json:"receipt_url,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Display enrichment: amount in the company default currency, when the
	// rate lookup succeeds. Never blocks the workflow.
	ConvertedAmount   *float64 `json:"converted_amount,omitempty"`
	ConvertedCurrency *string  `json:"converted_currency,omitempty"`

	Approvals []ApprovalResponse `json:"approvals,omitempty"`
}

func (e *Expense) ToResponse() ExpenseResponse {
	return ExpenseResponse{
		ID:           e.ID,
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		WorkflowID:   e.WorkflowID,
		Amount:       e.Amount,
		Currency:     e.Currency,
		Category:     e.Category,
		Description:  e.Description,
		ReceiptURL:   e.ReceiptURL,
		Status:       e.Status,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// ReceiptDataResponse is what the OCR extractor reads off an uploaded receipt.
type ReceiptDataResponse struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}
