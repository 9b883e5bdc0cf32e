package expense

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

// IsTerminal reports whether no further approval decisions can move the expense.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// Decision is the value an approver submits for a pending approval.
// Only "approved" and "rejected" are accepted.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

func (d Decision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// Expense is the unit of work. Its status is derived from its approval chain
// by the workflow builder and the approval advancer; nothing else writes it
// except the admin override.
type Expense struct {
	ID          string
	CompanyID   string
	EmployeeID  string
	WorkflowID  *string
	Amount      float64
	Currency    string
	Category    string
	Description string
	ReceiptURL  *string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Join fields for responses
	EmployeeName *string
}

// Approval is one decision slot in an expense's chain. Sequence values order
// the chain; the actionable slot is the lowest not-yet-resolved sequence.
type Approval struct {
	ID         string
	ExpenseID  string
	ApproverID string
	Sequence   int
	Status     ApprovalStatus
	Comment    *string
	UpdatedAt  time.Time

	// Join fields for responses
	ApproverName *string
}
