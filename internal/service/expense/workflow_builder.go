package expense

import (
	"context"
	"fmt"

	"github.com/expensahq/expensa-backend-go/internal/domain/expense"
	"github.com/expensahq/expensa-backend-go/internal/domain/user"
	"github.com/expensahq/expensa-backend-go/internal/domain/workflow"
)

// buildApprovalChain creates the full approval chain for a freshly submitted
// expense and notifies the first approver. Three paths:
//
//   - workflow referenced: one pending approval per step, first-sequence
//     approver notified
//   - no workflow, employee has a manager: single approval for the manager
//   - neither: no approvals; the expense sits in pending until an admin
//     override
//
// Must run inside the same transaction that created the expense. The expense
// status stays pending; only the advancer moves it forward.
func (s *ExpenseServiceImpl) buildApprovalChain(ctx context.Context, exp expense.Expense, employee user.User, wf *workflow.ApprovalWorkflow) error {
	if wf != nil {
		approvals := make([]expense.Approval, 0, len(wf.Steps))
		for _, step := range wf.Steps {
			approvals = append(approvals, expense.Approval{
				ExpenseID:  exp.ID,
				ApproverID: step.ApproverID,
				Sequence:   step.Sequence,
				Status:     expense.ApprovalStatusPending,
			})
		}
		if err := s.approvalRepo.CreateBatch(ctx, approvals); err != nil {
			return fmt.Errorf("failed to create approval chain: %w", err)
		}

		for _, step := range wf.Steps {
			if step.Sequence == 1 {
				message := fmt.Sprintf("New expense from %s needs your approval.", employee.Name)
				if err := s.notify(ctx, step.ApproverID, message); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if employee.ManagerID != nil {
		err := s.approvalRepo.CreateBatch(ctx, []expense.Approval{{
			ExpenseID:  exp.ID,
			ApproverID: *employee.ManagerID,
			Sequence:   1,
			Status:     expense.ApprovalStatusPending,
		}})
		if err != nil {
			return fmt.Errorf("failed to create manager approval: %w", err)
		}

		message := fmt.Sprintf("New expense from %s needs your approval.", employee.Name)
		return s.notify(ctx, *employee.ManagerID, message)
	}

	// No workflow and no manager: nothing to create.
	return nil
}
