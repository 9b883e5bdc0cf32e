package expense

import (
	"testing"

	"github.com/expensahq/expensa-backend-go/internal/domain/expense"
	"github.com/expensahq/expensa-backend-go/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func percentageRule(threshold int) workflow.ApprovalRule {
	return workflow.ApprovalRule{
		ID:                  "rule-percentage",
		RuleType:            workflow.RuleTypePercentage,
		ThresholdPercentage: &threshold,
	}
}

func specificApproverRule(approverID string) workflow.ApprovalRule {
	return workflow.ApprovalRule{
		ID:                 "rule-specific",
		RuleType:           workflow.RuleTypeSpecificApprover,
		SpecificApproverID: &approverID,
	}
}

func approvalsWith(statuses ...expense.ApprovalStatus) []expense.Approval {
	approvals := make([]expense.Approval, 0, len(statuses))
	for i, status := range statuses {
		approvals = append(approvals, expense.Approval{
			ID:       "approval-" + string(rune('a'+i)),
			Sequence: i + 1,
			Status:   status,
		})
	}
	return approvals
}

func TestEvaluateRules_NoRules(t *testing.T) {
	t.Parallel()

	decision := evaluateRules(nil, approvalsWith(expense.ApprovalStatusApproved), "approver-1")

	assert.Nil(t, decision)
}

func TestEvaluateRules_PercentageMet(t *testing.T) {
	t.Parallel()

	// 2 of 3 approved = 66.7% >= 60%
	approvals := approvalsWith(
		expense.ApprovalStatusApproved,
		expense.ApprovalStatusApproved,
		expense.ApprovalStatusPending,
	)

	decision := evaluateRules([]workflow.ApprovalRule{percentageRule(60)}, approvals, "approver-1")

	require.NotNil(t, decision)
	assert.Equal(t, expense.DecisionApproved, *decision)
}

func TestEvaluateRules_PercentageExactBoundary(t *testing.T) {
	t.Parallel()

	// 1 of 2 approved = exactly 50%
	approvals := approvalsWith(
		expense.ApprovalStatusApproved,
		expense.ApprovalStatusPending,
	)

	decision := evaluateRules([]workflow.ApprovalRule{percentageRule(50)}, approvals, "approver-1")

	require.NotNil(t, decision)
	assert.Equal(t, expense.DecisionApproved, *decision)
}

func TestEvaluateRules_PercentageNotMet(t *testing.T) {
	t.Parallel()

	// 1 of 3 approved = 33.3% < 60%
	approvals := approvalsWith(
		expense.ApprovalStatusApproved,
		expense.ApprovalStatusPending,
		expense.ApprovalStatusPending,
	)

	decision := evaluateRules([]workflow.ApprovalRule{percentageRule(60)}, approvals, "approver-1")

	assert.Nil(t, decision)
}

func TestEvaluateRules_PercentageEmptyChain(t *testing.T) {
	t.Parallel()

	// No approval slots must never divide by zero or fire the rule.
	decision := evaluateRules([]workflow.ApprovalRule{percentageRule(0)}, nil, "approver-1")

	assert.Nil(t, decision)
}

func TestEvaluateRules_PercentageNilThreshold(t *testing.T) {
	t.Parallel()

	rule := workflow.ApprovalRule{
		ID:       "rule-broken",
		RuleType: workflow.RuleTypePercentage,
	}

	decision := evaluateRules([]workflow.ApprovalRule{rule}, approvalsWith(expense.ApprovalStatusApproved), "approver-1")

	assert.Nil(t, decision)
}

func TestEvaluateRules_SpecificApproverMatch(t *testing.T) {
	t.Parallel()

	approvals := approvalsWith(
		expense.ApprovalStatusApproved,
		expense.ApprovalStatusPending,
		expense.ApprovalStatusPending,
	)

	decision := evaluateRules([]workflow.ApprovalRule{specificApproverRule("cfo-1")}, approvals, "cfo-1")

	require.NotNil(t, decision)
	assert.Equal(t, expense.DecisionApproved, *decision)
}

func TestEvaluateRules_SpecificApproverNoMatch(t *testing.T) {
	t.Parallel()

	decision := evaluateRules([]workflow.ApprovalRule{specificApproverRule("cfo-1")}, approvalsWith(expense.ApprovalStatusApproved), "someone-else")

	assert.Nil(t, decision)
}

func TestEvaluateRules_SpecificApproverNilID(t *testing.T) {
	t.Parallel()

	rule := workflow.ApprovalRule{
		ID:       "rule-broken",
		RuleType: workflow.RuleTypeSpecificApprover,
	}

	decision := evaluateRules([]workflow.ApprovalRule{rule}, approvalsWith(expense.ApprovalStatusApproved), "approver-1")

	assert.Nil(t, decision)
}

func TestEvaluateRules_FirstMatchWins(t *testing.T) {
	t.Parallel()

	// Both rules would fire; the specific approver rule comes first and wins.
	rules := []workflow.ApprovalRule{
		specificApproverRule("cfo-1"),
		percentageRule(10),
	}
	approvals := approvalsWith(
		expense.ApprovalStatusApproved,
		expense.ApprovalStatusPending,
	)

	decision := evaluateRules(rules, approvals, "cfo-1")

	require.NotNil(t, decision)
	assert.Equal(t, expense.DecisionApproved, *decision)
}

func TestEvaluateRules_LaterRuleFires(t *testing.T) {
	t.Parallel()

	// First rule misses, second matches.
	rules := []workflow.ApprovalRule{
		specificApproverRule("cfo-1"),
		percentageRule(50),
	}
	approvals := approvalsWith(
		expense.ApprovalStatusApproved,
		expense.ApprovalStatusApproved,
		expense.ApprovalStatusPending,
	)

	decision := evaluateRules(rules, approvals, "regular-approver")

	require.NotNil(t, decision)
	assert.Equal(t, expense.DecisionApproved, *decision)
}

func TestEvaluateRules_RejectedSlotsCountAgainstPercentage(t *testing.T) {
	t.Parallel()

	// A rejected slot still counts in the denominator.
	approvals := approvalsWith(
		expense.ApprovalStatusApproved,
		expense.ApprovalStatusRejected,
	)

	decision := evaluateRules([]workflow.ApprovalRule{percentageRule(60)}, approvals, "approver-1")

	assert.Nil(t, decision)
}
