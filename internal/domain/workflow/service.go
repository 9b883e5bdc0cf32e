package workflow

import (
	"context"
)

// WorkflowService manages approval workflow and rule configuration. All
// operations are scoped to the caller's company.
type WorkflowService interface {
	CreateWorkflow(ctx context.Context, companyID string, req CreateWorkflowRequest) (WorkflowResponse, error)
	GetWorkflow(ctx context.Context, companyID, id string) (WorkflowResponse, error)
	ListWorkflows(ctx context.Context, companyID string) ([]WorkflowResponse, error)
	DeleteWorkflow(ctx context.Context, companyID, id string) error

	CreateRule(ctx context.Context, companyID string, req CreateRuleRequest) (RuleResponse, error)
	ListRules(ctx context.Context, companyID string) ([]RuleResponse, error)
	DeleteRule(ctx context.Context, companyID, id string) error
}
