package expense

import (
	"context"
	"fmt"

	"github.com/expensahq/expensa-backend-go/internal/domain/expense"
	"github.com/expensahq/expensa-backend-go/internal/domain/notification"
	"github.com/expensahq/expensa-backend-go/internal/domain/user"
	"github.com/expensahq/expensa-backend-go/internal/domain/workflow"
	"github.com/expensahq/expensa-backend-go/internal/pkg/database"
	"github.com/expensahq/expensa-backend-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
)

type ApprovalServiceImpl struct {
	db               *database.DB
	expenseRepo      expense.ExpenseRepository
	approvalRepo     expense.ApprovalRepository
	ruleRepo         workflow.RuleRepository
	userRepo         user.UserRepository
	notificationRepo notification.Repository
}

func NewApprovalService(
	db *database.DB,
	expenseRepo expense.ExpenseRepository,
	approvalRepo expense.ApprovalRepository,
	ruleRepo workflow.RuleRepository,
	userRepo user.UserRepository,
	notificationRepo notification.Repository,
) expense.ApprovalService {
	return &ApprovalServiceImpl{
		db:               db,
		expenseRepo:      expenseRepo,
		approvalRepo:     approvalRepo,
		ruleRepo:         ruleRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
	}
}

// ListPending implements expense.ApprovalService.
func (s *ApprovalServiceImpl) ListPending(ctx context.Context, approverID string) ([]expense.ApprovalResponse, error) {
	approvals, err := s.approvalRepo.GetByApproverID(ctx, approverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}

	responses := make([]expense.ApprovalResponse, 0, len(approvals))
	for i := range approvals {
		if approvals[i].Status != expense.ApprovalStatusPending {
			continue
		}
		responses = append(responses, approvals[i].ToResponse())
	}
	return responses, nil
}

// Act implements expense.ApprovalService. This is the advancer: it records
// one decision and moves the expense through its state machine. All checks
// run before any write; the writes themselves (approval status, expense
// status, notifications) commit as one transaction.
//
// The status update is a compare-and-set on status=pending, so two approvers
// racing to resolve the same row cannot both advance the expense: the loser
// gets ErrApprovalAlreadyProcessed and no state changes.
func (s *ApprovalServiceImpl) Act(ctx context.Context, approvalID string, req expense.ApprovalActionRequest) (expense.ApprovalResponse, error) {
	approval, err := s.approvalRepo.GetByID(ctx, approvalID)
	if err != nil {
		return expense.ApprovalResponse{}, err
	}

	if approval.ApproverID != req.ActorID {
		return expense.ApprovalResponse{}, expense.ErrNotApprover
	}
	if approval.Status != expense.ApprovalStatusPending {
		return expense.ApprovalResponse{}, expense.ErrApprovalAlreadyProcessed
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := s.approvalRepo.ResolvePending(txCtx, approvalID, req.Decision, req.Comment); err != nil {
			return err
		}

		exp, err := s.expenseRepo.GetByID(txCtx, approval.ExpenseID)
		if err != nil {
			return fmt.Errorf("failed to get expense: %w", err)
		}

		actor, err := s.userRepo.GetByID(txCtx, req.ActorID)
		if err != nil {
			return fmt.Errorf("failed to get approver: %w", err)
		}

		message := fmt.Sprintf("Your expense '%s' was %s by %s.", exp.Description, req.Decision, actor.Name)
		if err := s.notify(txCtx, exp.EmployeeID, message); err != nil {
			return err
		}

		if req.Decision == expense.DecisionRejected {
			return s.expenseRepo.UpdateStatus(txCtx, exp.ID, expense.StatusRejected)
		}

		return s.advance(txCtx, exp, approval)
	})
	if err != nil {
		return expense.ApprovalResponse{}, err
	}

	resolved, err := s.approvalRepo.GetByID(ctx, approvalID)
	if err != nil {
		return expense.ApprovalResponse{}, err
	}
	return resolved.ToResponse(), nil
}

// advance runs after an approval was recorded as approved: it consults the
// conditional rules, then either short-circuits the chain, hands off to the
// next sequence, or finishes the expense.
func (s *ApprovalServiceImpl) advance(ctx context.Context, exp expense.Expense, approval expense.Approval) error {
	rules, err := s.ruleRepo.GetByCompanyID(ctx, exp.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to get rules: %w", err)
	}

	// Reload inside the transaction so the chain includes the decision just
	// recorded.
	approvals, err := s.approvalRepo.GetByExpenseID(ctx, exp.ID)
	if err != nil {
		return fmt.Errorf("failed to get approvals: %w", err)
	}

	if decision := evaluateRules(rules, approvals, approval.ApproverID); decision != nil && *decision == expense.DecisionApproved {
		if err := s.expenseRepo.UpdateStatus(ctx, exp.ID, expense.StatusApproved); err != nil {
			return err
		}
		return s.notify(ctx, exp.EmployeeID, "Expense auto-approved by conditional rule.")
	}

	next, err := s.approvalRepo.GetByExpenseAndSequence(ctx, exp.ID, approval.Sequence+1)
	if err != nil {
		if err == expense.ErrApprovalNotFound {
			// Last sequence resolved: the chain is complete.
			return s.expenseRepo.UpdateStatus(ctx, exp.ID, expense.StatusApproved)
		}
		return fmt.Errorf("failed to get next approval: %w", err)
	}

	if err := s.expenseRepo.UpdateStatus(ctx, exp.ID, expense.StatusInProgress); err != nil {
		return err
	}

	employee, err := s.userRepo.GetByID(ctx, exp.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to get employee: %w", err)
	}
	message := fmt.Sprintf("Expense from %s is ready for your approval.", employee.Name)
	return s.notify(ctx, next.ApproverID, message)
}

func (s *ApprovalServiceImpl) notify(ctx context.Context, userID, message string) error {
	n := &notification.Notification{
		UserID:  userID,
		Message: message,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}
