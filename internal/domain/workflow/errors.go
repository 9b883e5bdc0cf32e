package workflow

import "errors"

var (
	ErrWorkflowNotFound        = errors.New("approval workflow not found")
	ErrRuleNotFound            = errors.New("approval rule not found")
	ErrWorkflowHasNoSteps      = errors.New("approval workflow must have at least one step")
	ErrInvalidStepSequence     = errors.New("step sequence must be a positive integer")
	ErrInvalidRuleType         = errors.New("rule type must be percentage or specific_approver")
	ErrThresholdRequired       = errors.New("percentage rule requires a threshold between 0 and 100")
	ErrSpecificApproverMissing = errors.New("specific_approver rule requires an approver")
)
