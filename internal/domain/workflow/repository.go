package workflow

import (
	"context"
)

// WorkflowRepository - interface for approval_workflows and workflow_steps tables
type WorkflowRepository interface {
	Create(ctx context.Context, wf ApprovalWorkflow) (ApprovalWorkflow, error)
	// GetByID returns the workflow with its steps ordered by ascending sequence.
	GetByID(ctx context.Context, id string) (ApprovalWorkflow, error)
	GetByCompanyID(ctx context.Context, companyID string) ([]ApprovalWorkflow, error)
	Delete(ctx context.Context, id string) error
}

// RuleRepository - interface for approval_rules table
type RuleRepository interface {
	Create(ctx context.Context, rule ApprovalRule) (ApprovalRule, error)
	GetByID(ctx context.Context, id string) (ApprovalRule, error)
	// GetByCompanyID returns rules ordered by creation time so that rule
	// evaluation is deterministic.
	GetByCompanyID(ctx context.Context, companyID string) ([]ApprovalRule, error)
	Delete(ctx context.Context, id string) error
}
