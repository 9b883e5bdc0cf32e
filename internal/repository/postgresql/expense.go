package postgresql

import (
	"context"

	"github.com/expensahq/expensa-backend-go/internal/domain/expense"
	"github.com/expensahq/expensa-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type expenseRepositoryImpl struct {
	db *database.DB
}

func NewExpenseRepository(db *database.DB) expense.ExpenseRepository {
	return &expenseRepositoryImpl{db: db}
}

// Create implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) Create(ctx context.Context, exp expense.Expense) (expense.Expense, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO expenses (
			company_id, employee_id, workflow_id, amount, currency,
			category, description, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, company_id, employee_id, workflow_id, amount, currency,
				  category, description, receipt_url, status, created_at, updated_at
	`

	var created expense.Expense
	err := q.QueryRow(ctx, query,
		exp.CompanyID,
		exp.EmployeeID,
		exp.WorkflowID,
		exp.Amount,
		exp.Currency,
		exp.Category,
		exp.Description,
		exp.Status,
	).Scan(
		&created.ID,
		&created.CompanyID,
		&created.EmployeeID,
		&created.WorkflowID,
		&created.Amount,
		&created.Currency,
		&created.Category,
		&created.Description,
		&created.ReceiptURL,
		&created.Status,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return expense.Expense{}, err
	}

	return created, nil
}

// GetByID implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) GetByID(ctx context.Context, id string) (expense.Expense, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.company_id, e.employee_id, e.workflow_id, e.amount, e.currency,
			   e.category, e.description, e.receipt_url, e.status, e.created_at, e.updated_at,
			   u.name
		FROM expenses e
		INNER JOIN users u ON e.employee_id = u.id
		WHERE e.id = $1
	`

	var found expense.Expense
	err := q.QueryRow(ctx, query, id).Scan(
		&found.ID,
		&found.CompanyID,
		&found.EmployeeID,
		&found.WorkflowID,
		&found.Amount,
		&found.Currency,
		&found.Category,
		&found.Description,
		&found.ReceiptURL,
		&found.Status,
		&found.CreatedAt,
		&found.UpdatedAt,
		&found.EmployeeName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return expense.Expense{}, expense.ErrExpenseNotFound
		}
		return expense.Expense{}, err
	}

	return found, nil
}

// GetByEmployeeID implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) ([]expense.Expense, error) {
	query := `
		SELECT e.id, e.company_id, e.employee_id, e.workflow_id, e.amount, e.currency,
			   e.category, e.description, e.receipt_url, e.status, e.created_at, e.updated_at,
			   u.name
		FROM expenses e
		INNER JOIN users u ON e.employee_id = u.id
		WHERE e.employee_id = $1
		ORDER BY e.created_at DESC
	`
	return r.queryExpenses(ctx, query, employeeID)
}

// GetByManagerID implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) GetByManagerID(ctx context.Context, managerID string) ([]expense.Expense, error) {
	query := `
		SELECT e.id, e.company_id, e.employee_id, e.workflow_id, e.amount, e.currency,
			   e.category, e.description, e.receipt_url, e.status, e.created_at, e.updated_at,
			   u.name
		FROM expenses e
		INNER JOIN users u ON e.employee_id = u.id
		WHERE u.manager_id = $1
		ORDER BY e.created_at DESC
	`
	return r.queryExpenses(ctx, query, managerID)
}

// GetByCompanyID implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) GetByCompanyID(ctx context.Context, companyID string) ([]expense.Expense, error) {
	query := `
		SELECT e.id, e.company_id, e.employee_id, e.workflow_id, e.amount, e.currency,
			   e.category, e.description, e.receipt_url, e.status, e.created_at, e.updated_at,
			   u.name
		FROM expenses e
		INNER JOIN users u ON e.employee_id = u.id
		WHERE e.company_id = $1
		ORDER BY e.created_at DESC
	`
	return r.queryExpenses(ctx, query, companyID)
}

func (r *expenseRepositoryImpl) queryExpenses(ctx context.Context, query string, arg interface{}) ([]expense.Expense, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []expense.Expense
	for rows.Next() {
		var e expense.Expense
		err := rows.Scan(
			&e.ID,
			&e.CompanyID,
			&e.EmployeeID,
			&e.WorkflowID,
			&e.Amount,
			&e.Currency,
			&e.Category,
			&e.Description,
			&e.ReceiptURL,
			&e.Status,
			&e.CreatedAt,
			&e.UpdatedAt,
			&e.EmployeeName,
		)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

// UpdateStatus implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) UpdateStatus(ctx context.Context, id string, status expense.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE expenses
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	commandTag, err := q.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return expense.ErrExpenseNotFound
	}
	return nil
}

// UpdateReceipt implements expense.ExpenseRepository. When extracted data is
// present it overwrites amount, description and category alongside the
// receipt URL.
func (r *expenseRepositoryImpl) UpdateReceipt(ctx context.Context, id string, receiptURL string, data *expense.ReceiptDataResponse) error {
	q := GetQuerier(ctx, r.db)

	if data != nil {
		query := `
			UPDATE expenses
			SET receipt_url = $1, amount = $2, description = $3, category = $4, updated_at = NOW()
			WHERE id = $5
		`
		tag, err := q.Exec(ctx, query, receiptURL, data.Amount, data.Description, data.Category, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return expense.ErrExpenseNotFound
		}
		return nil
	}

	query := `
		UPDATE expenses
		SET receipt_url = $1, updated_at = NOW()
		WHERE id = $2
	`
	tag, err := q.Exec(ctx, query, receiptURL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return expense.ErrExpenseNotFound
	}
	return nil
}
