package workflow

import "time"

// ApprovalWorkflow is a named, ordered template of approval steps scoped to a company.
type ApprovalWorkflow struct {
	ID        string
	CompanyID string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Loaded with the workflow, ordered by ascending sequence
	Steps []WorkflowStep
}

// WorkflowStep assigns an approver to a 1-based position in the chain.
type WorkflowStep struct {
	ID         string
	WorkflowID string
	ApproverID string
	Sequence   int

	// Join field for responses
	ApproverName *string
}

type RuleType string

const (
	RuleTypePercentage       RuleType = "percentage"
	RuleTypeSpecificApprover RuleType = "specific_approver"
)

// ApprovalRule is a company-scoped conditional policy that can approve an
// expense outside strict sequence order. Rules are evaluated in creation
// order; the first matching rule wins.
type ApprovalRule struct {
	ID                  string
	CompanyID           string
	RuleType            RuleType
	ThresholdPercentage *int
	SpecificApproverID  *string
	CreatedAt           time.Time
}
