package postgresql

import (
	"context"

	"github.com/expensahq/expensa-backend-go/internal/domain/expense"
	"github.com/expensahq/expensa-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type approvalRepositoryImpl struct {
	db *database.DB
}

func NewApprovalRepository(db *database.DB) expense.ApprovalRepository {
	return &approvalRepositoryImpl{db: db}
}

// CreateBatch implements expense.ApprovalRepository. The whole chain for an
// expense is inserted in one go; callers wrap this in the same transaction
// that creates the expense.
func (r *approvalRepositoryImpl) CreateBatch(ctx context.Context, approvals []expense.Approval) error {
	if len(approvals) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO approvals (expense_id, approver_id, sequence, status)
		VALUES ($1, $2, $3, $4)
	`

	for _, a := range approvals {
		if _, err := q.Exec(ctx, query, a.ExpenseID, a.ApproverID, a.Sequence, a.Status); err != nil {
			return err
		}
	}

	return nil
}

// GetByID implements expense.ApprovalRepository.
func (r *approvalRepositoryImpl) GetByID(ctx context.Context, id string) (expense.Approval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.expense_id, a.approver_id, a.sequence, a.status, a.comment, a.updated_at, u.name
		FROM approvals a
		INNER JOIN users u ON a.approver_id = u.id
		WHERE a.id = $1
	`

	var found expense.Approval
	err := q.QueryRow(ctx, query, id).Scan(
		&found.ID,
		&found.ExpenseID,
		&found.ApproverID,
		&found.Sequence,
		&found.Status,
		&found.Comment,
		&found.UpdatedAt,
		&found.ApproverName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return expense.Approval{}, expense.ErrApprovalNotFound
		}
		return expense.Approval{}, err
	}

	return found, nil
}

// GetByExpenseID implements expense.ApprovalRepository.
func (r *approvalRepositoryImpl) GetByExpenseID(ctx context.Context, expenseID string) ([]expense.Approval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.expense_id, a.approver_id, a.sequence, a.status, a.comment, a.updated_at, u.name
		FROM approvals a
		INNER JOIN users u ON a.approver_id = u.id
		WHERE a.expense_id = $1
		ORDER BY a.sequence ASC
	`

	rows, err := q.Query(ctx, query, expenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []expense.Approval
	for rows.Next() {
		var a expense.Approval
		err := rows.Scan(
			&a.ID,
			&a.ExpenseID,
			&a.ApproverID,
			&a.Sequence,
			&a.Status,
			&a.Comment,
			&a.UpdatedAt,
			&a.ApproverName,
		)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, a)
	}

	return approvals, rows.Err()
}

// GetByExpenseAndSequence implements expense.ApprovalRepository.
func (r *approvalRepositoryImpl) GetByExpenseAndSequence(ctx context.Context, expenseID string, sequence int) (expense.Approval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.expense_id, a.approver_id, a.sequence, a.status, a.comment, a.updated_at, u.name
		FROM approvals a
		INNER JOIN users u ON a.approver_id = u.id
		WHERE a.expense_id = $1 AND a.sequence = $2
	`

	var found expense.Approval
	err := q.QueryRow(ctx, query, expenseID, sequence).Scan(
		&found.ID,
		&found.ExpenseID,
		&found.ApproverID,
		&found.Sequence,
		&found.Status,
		&found.Comment,
		&found.UpdatedAt,
		&found.ApproverName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return expense.Approval{}, expense.ErrApprovalNotFound
		}
		return expense.Approval{}, err
	}

	return found, nil
}

// GetByApproverID implements expense.ApprovalRepository.
func (r *approvalRepositoryImpl) GetByApproverID(ctx context.Context, approverID string) ([]expense.Approval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.expense_id, a.approver_id, a.sequence, a.status, a.comment, a.updated_at, u.name
		FROM approvals a
		INNER JOIN users u ON a.approver_id = u.id
		WHERE a.approver_id = $1
		ORDER BY a.updated_at DESC
	`

	rows, err := q.Query(ctx, query, approverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []expense.Approval
	for rows.Next() {
		var a expense.Approval
		err := rows.Scan(
			&a.ID,
			&a.ExpenseID,
			&a.ApproverID,
			&a.Sequence,
			&a.Status,
			&a.Comment,
			&a.UpdatedAt,
			&a.ApproverName,
		)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, a)
	}

	return approvals, rows.Err()
}

// ResolvePending implements expense.ApprovalRepository. The status predicate
// makes the update a compare-and-set: a second decision on the same approval
// matches zero rows and surfaces as ErrApprovalAlreadyProcessed.
func (r *approvalRepositoryImpl) ResolvePending(ctx context.Context, id string, decision expense.Decision, comment string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE approvals
		SET status = $1, comment = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'pending'
	`

	commandTag, err := q.Exec(ctx, query, string(decision), comment, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() == 0 {
		return expense.ErrApprovalAlreadyProcessed
	}
	return nil
}
