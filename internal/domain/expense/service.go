package expense

import (
	"context"

	"github.com/expensahq/expensa-backend-go/internal/domain/user"
)

// ExpenseService covers the employee-facing expense lifecycle. Create runs
// the workflow builder; the approval chain exists by the time Create returns.
type ExpenseService interface {
	Create(ctx context.Context, req CreateExpenseRequest) (ExpenseResponse, error)
	// List scopes results by role: employees see their own expenses,
	// managers their reports', admins the whole company.
	List(ctx context.Context, actor user.User) ([]ExpenseResponse, error)
	GetByID(ctx context.Context, actor user.User, id string) (ExpenseResponse, error)
	// Override lets an admin force a terminal status regardless of the
	// approval chain.
	Override(ctx context.Context, actor user.User, expenseID string, req OverrideRequest) (ExpenseResponse, error)
	UploadReceipt(ctx context.Context, req UploadReceiptRequest) (ReceiptDataResponse, error)
}

// ApprovalService advances the approval state machine.
type ApprovalService interface {
	// ListPending returns the approver's actionable inbox.
	ListPending(ctx context.Context, approverID string) ([]ApprovalResponse, error)
	// Act records one decision and advances the expense accordingly.
	Act(ctx context.Context, approvalID string, req ApprovalActionRequest) (ApprovalResponse, error)
}
