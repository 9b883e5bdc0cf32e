package workflow

import (
	"time"

	"github.com/expensahq/expensa-backend-go/internal/pkg/validator"
)

// ============= Workflow DTOs =============

type WorkflowStepRequest struct {
	ApproverID string `json:"approver_id"`
	Sequence   int    `json:"sequence"`
}

type CreateWorkflowRequest struct {
	Name  string                `json:"name"`
	Steps []WorkflowStepRequest `json:"steps"`
}

func (r *CreateWorkflowRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Steps) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "steps",
			Message: "at least one step is required",
		})
	}
	for _, step := range r.Steps {
		if !validator.IsValidUUID(step.ApproverID) {
			errs = append(errs, validator.ValidationError{
				Field:   "steps",
				Message: "approver_id must be a valid UUID",
			})
			break
		}
		if step.Sequence < 1 {
			errs = append(errs, validator.ValidationError{
				Field:   "steps",
				Message: "sequence must be a positive integer",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type WorkflowStepResponse struct {
	ID           string  `json:"id"`
	ApproverID   string  `json:"approver_id"`
	ApproverName *string `json:"approver_name,omitempty"`
	Sequence     int     `json:"sequence"`
}

type WorkflowResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Steps     []WorkflowStepResponse `json:"steps"`
	CreatedAt time.Time              `json:"created_at"`
}

func (w *ApprovalWorkflow) ToResponse() WorkflowResponse {
	steps := make([]WorkflowStepResponse, 0, len(w.Steps))
	for _, s := range w.Steps {
		steps = append(steps, WorkflowStepResponse{
			ID:           s.ID,
			ApproverID:   s.ApproverID,
			ApproverName: s.ApproverName,
			Sequence:     s.Sequence,
		})
	}
	return WorkflowResponse{
		ID:        w.ID,
		Name:      w.Name,
		Steps:     steps,
		CreatedAt: w.CreatedAt,
	}
}

// ============= Rule DTOs =============

type CreateRuleRequest struct {
	RuleType            RuleType `json:"rule_type"`
	ThresholdPercentage *int     `json:"threshold_percentage,omitempty"`
	SpecificApproverID  *string  `json:"specific_approver_id,omitempty"`
}

func (r *CreateRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	switch r.RuleType {
	case RuleTypePercentage:
		if r.ThresholdPercentage == nil {
			errs = append(errs, validator.ValidationError{
				Field:   "threshold_percentage",
				Message: "threshold_percentage is required for percentage rules",
			})
		} else if *r.ThresholdPercentage < 0 || *r.ThresholdPercentage > 100 {
			errs = append(errs, validator.ValidationError{
				Field:   "threshold_percentage",
				Message: "threshold_percentage must be between 0 and 100",
			})
		}
	case RuleTypeSpecificApprover:
		if r.SpecificApproverID == nil || !validator.IsValidUUID(*r.SpecificApproverID) {
			errs = append(errs, validator.ValidationError{
				Field:   "specific_approver_id",
				Message: "specific_approver_id is required for specific_approver rules",
			})
		}
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "rule_type",
			Message: "rule_type must be percentage or specific_approver",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RuleResponse struct {
	ID                  string   `json:"id"`
	RuleType            RuleType `json:"rule_type"`
	ThresholdPercentage *int     `json:"threshold_percentage,omitempty"`
	SpecificApproverID  *string  `json:"specific_approver_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

func (r *ApprovalRule) ToResponse() RuleResponse {
	return RuleResponse{
		ID:                  r.ID,
		RuleType:            r.RuleType,
		ThresholdPercentage: r.ThresholdPercentage,
		SpecificApproverID:  r.SpecificApproverID,
		CreatedAt:           r.CreatedAt,
	}
}
