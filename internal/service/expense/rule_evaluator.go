package expense

import (
	"github.com/expensahq/expensa-backend-go/internal/domain/expense"
	"github.com/expensahq/expensa-backend-go/internal/domain/workflow"
)

// evaluateRules checks the company's conditional approval rules against the
// expense's full approval chain and the approver who just acted. Rules are
// tried in the order given (creation order); the first match wins. A nil
// result means no rule fired and normal sequence advancement applies.
//
// Pure function of its inputs; mutates nothing.
func evaluateRules(rules []workflow.ApprovalRule, approvals []expense.Approval, currentApproverID string) *expense.Decision {
	for _, rule := range rules {
		switch rule.RuleType {
		case workflow.RuleTypeSpecificApprover:
			if rule.SpecificApproverID != nil && *rule.SpecificApproverID == currentApproverID {
				decision := expense.DecisionApproved
				return &decision
			}
		case workflow.RuleTypePercentage:
			if rule.ThresholdPercentage == nil {
				continue
			}
			total := len(approvals)
			if total == 0 {
				continue
			}
			approved := 0
			for _, a := range approvals {
				if a.Status == expense.ApprovalStatusApproved {
					approved++
				}
			}
			percentage := float64(approved) / float64(total) * 100
			if percentage >= float64(*rule.ThresholdPercentage) {
				decision := expense.DecisionApproved
				return &decision
			}
		}
	}
	return nil
}
