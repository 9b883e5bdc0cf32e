package expense

import (
	"context"
)

// ExpenseRepository - interface for expenses table
type ExpenseRepository interface {
	Create(ctx context.Context, exp Expense) (Expense, error)
	GetByID(ctx context.Context, id string) (Expense, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]Expense, error)
	// GetByManagerID returns the expenses of the manager's direct reports.
	GetByManagerID(ctx context.Context, managerID string) ([]Expense, error)
	GetByCompanyID(ctx context.Context, companyID string) ([]Expense, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	UpdateReceipt(ctx context.Context, id string, receiptURL string, data *ReceiptDataResponse) error
}

// ApprovalRepository - interface for approvals table
type ApprovalRepository interface {
	CreateBatch(ctx context.Context, approvals []Approval) error
	GetByID(ctx context.Context, id string) (Approval, error)
	// GetByExpenseID returns the full chain ordered by ascending sequence.
	GetByExpenseID(ctx context.Context, expenseID string) ([]Approval, error)
	GetByExpenseAndSequence(ctx context.Context, expenseID string, sequence int) (Approval, error)
	GetByApproverID(ctx context.Context, approverID string) ([]Approval, error)
	// ResolvePending applies a decision only if the approval is still pending.
	// Returns ErrApprovalAlreadyProcessed when the row was resolved concurrently.
	ResolvePending(ctx context.Context, id string, decision Decision, comment string) error
}
