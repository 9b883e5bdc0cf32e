package workflow

import (
	"context"
	"fmt"

	"github.com/expensahq/expensa-backend-go/internal/domain/user"
	"github.com/expensahq/expensa-backend-go/internal/domain/workflow"
	"github.com/expensahq/expensa-backend-go/internal/pkg/database"
	"github.com/expensahq/expensa-backend-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
)

type WorkflowServiceImpl struct {
	db *database.DB
	workflow.WorkflowRepository
	workflow.RuleRepository
	user.UserRepository
}

func NewWorkflowService(db *database.DB, workflowRepository workflow.WorkflowRepository, ruleRepository workflow.RuleRepository, userRepository user.UserRepository) workflow.WorkflowService {
	return &WorkflowServiceImpl{
		db:                 db,
		WorkflowRepository: workflowRepository,
		RuleRepository:     ruleRepository,
		UserRepository:     userRepository,
	}
}

// CreateWorkflow implements workflow.WorkflowService. The workflow and its
// steps are created in one transaction.
func (s *WorkflowServiceImpl) CreateWorkflow(ctx context.Context, companyID string, req workflow.CreateWorkflowRequest) (workflow.WorkflowResponse, error) {
	for _, step := range req.Steps {
		if err := s.validateApprover(ctx, companyID, step.ApproverID); err != nil {
			return workflow.WorkflowResponse{}, err
		}
	}

	var created workflow.ApprovalWorkflow
	err := postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		wf := workflow.ApprovalWorkflow{
			CompanyID: companyID,
			Name:      req.Name,
		}
		for _, step := range req.Steps {
			wf.Steps = append(wf.Steps, workflow.WorkflowStep{
				ApproverID: step.ApproverID,
				Sequence:   step.Sequence,
			})
		}

		var err error
		created, err = s.WorkflowRepository.Create(txCtx, wf)
		if err != nil {
			return fmt.Errorf("failed to create workflow: %w", err)
		}
		return nil
	})
	if err != nil {
		return workflow.WorkflowResponse{}, err
	}

	return created.ToResponse(), nil
}

// GetWorkflow implements workflow.WorkflowService.
func (s *WorkflowServiceImpl) GetWorkflow(ctx context.Context, companyID, id string) (workflow.WorkflowResponse, error) {
	found, err := s.WorkflowRepository.GetByID(ctx, id)
	if err != nil {
		return workflow.WorkflowResponse{}, err
	}
	if found.CompanyID != companyID {
		return workflow.WorkflowResponse{}, workflow.ErrWorkflowNotFound
	}
	return found.ToResponse(), nil
}

// ListWorkflows implements workflow.WorkflowService.
func (s *WorkflowServiceImpl) ListWorkflows(ctx context.Context, companyID string) ([]workflow.WorkflowResponse, error) {
	workflows, err := s.WorkflowRepository.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	responses := make([]workflow.WorkflowResponse, 0, len(workflows))
	for i := range workflows {
		responses = append(responses, workflows[i].ToResponse())
	}
	return responses, nil
}

// DeleteWorkflow implements workflow.WorkflowService.
func (s *WorkflowServiceImpl) DeleteWorkflow(ctx context.Context, companyID, id string) error {
	found, err := s.WorkflowRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if found.CompanyID != companyID {
		return workflow.ErrWorkflowNotFound
	}
	return s.WorkflowRepository.Delete(ctx, id)
}

// CreateRule implements workflow.WorkflowService.
func (s *WorkflowServiceImpl) CreateRule(ctx context.Context, companyID string, req workflow.CreateRuleRequest) (workflow.RuleResponse, error) {
	if req.RuleType == workflow.RuleTypeSpecificApprover && req.SpecificApproverID != nil {
		if err := s.validateApprover(ctx, companyID, *req.SpecificApproverID); err != nil {
			return workflow.RuleResponse{}, err
		}
	}

	created, err := s.RuleRepository.Create(ctx, workflow.ApprovalRule{
		CompanyID:           companyID,
		RuleType:            req.RuleType,
		ThresholdPercentage: req.ThresholdPercentage,
		SpecificApproverID:  req.SpecificApproverID,
	})
	if err != nil {
		return workflow.RuleResponse{}, fmt.Errorf("failed to create rule: %w", err)
	}

	return created.ToResponse(), nil
}

// ListRules implements workflow.WorkflowService.
func (s *WorkflowServiceImpl) ListRules(ctx context.Context, companyID string) ([]workflow.RuleResponse, error) {
	rules, err := s.RuleRepository.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	responses := make([]workflow.RuleResponse, 0, len(rules))
	for i := range rules {
		responses = append(responses, rules[i].ToResponse())
	}
	return responses, nil
}

// DeleteRule implements workflow.WorkflowService.
func (s *WorkflowServiceImpl) DeleteRule(ctx context.Context, companyID, id string) error {
	found, err := s.RuleRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if found.CompanyID != companyID {
		return workflow.ErrRuleNotFound
	}
	return s.RuleRepository.Delete(ctx, id)
}

func (s *WorkflowServiceImpl) validateApprover(ctx context.Context, companyID, approverID string) error {
	approver, err := s.UserRepository.GetByID(ctx, approverID)
	if err != nil {
		if err == user.ErrUserNotFound {
			return user.ErrManagerNotFound
		}
		return fmt.Errorf("failed to get approver: %w", err)
	}
	if approver.CompanyID != companyID {
		return user.ErrCompanyMismatch
	}
	return nil
}
