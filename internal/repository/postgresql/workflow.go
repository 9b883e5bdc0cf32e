package postgresql

import (
	"context"

	"github.com/expensahq/expensa-backend-go/internal/domain/workflow"
	"github.com/expensahq/expensa-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workflowRepositoryImpl struct {
	db *database.DB
}

func NewWorkflowRepository(db *database.DB) workflow.WorkflowRepository {
	return &workflowRepositoryImpl{db: db}
}

// Create implements workflow.WorkflowRepository. Steps are inserted together
// with the workflow; callers wrap this in a transaction so a failed step
// insert leaves no partial workflow behind.
func (r *workflowRepositoryImpl) Create(ctx context.Context, wf workflow.ApprovalWorkflow) (workflow.ApprovalWorkflow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO approval_workflows (company_id, name)
		VALUES ($1, $2)
		RETURNING id, company_id, name, created_at, updated_at
	`

	var created workflow.ApprovalWorkflow
	err := q.QueryRow(ctx, query, wf.CompanyID, wf.Name).
		Scan(&created.ID, &created.CompanyID, &created.Name, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return workflow.ApprovalWorkflow{}, err
	}

	stepQuery := `
		INSERT INTO workflow_steps (workflow_id, approver_id, sequence)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	for _, step := range wf.Steps {
		var stepID string
		if err := q.QueryRow(ctx, stepQuery, created.ID, step.ApproverID, step.Sequence).Scan(&stepID); err != nil {
			return workflow.ApprovalWorkflow{}, err
		}
		created.Steps = append(created.Steps, workflow.WorkflowStep{
			ID:         stepID,
			WorkflowID: created.ID,
			ApproverID: step.ApproverID,
			Sequence:   step.Sequence,
		})
	}

	return created, nil
}

// GetByID implements workflow.WorkflowRepository.
func (r *workflowRepositoryImpl) GetByID(ctx context.Context, id string) (workflow.ApprovalWorkflow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, created_at, updated_at
		FROM approval_workflows
		WHERE id = $1
	`

	var found workflow.ApprovalWorkflow
	err := q.QueryRow(ctx, query, id).
		Scan(&found.ID, &found.CompanyID, &found.Name, &found.CreatedAt, &found.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return workflow.ApprovalWorkflow{}, workflow.ErrWorkflowNotFound
		}
		return workflow.ApprovalWorkflow{}, err
	}

	steps, err := r.getSteps(ctx, found.ID)
	if err != nil {
		return workflow.ApprovalWorkflow{}, err
	}
	found.Steps = steps

	return found, nil
}

// GetByCompanyID implements workflow.WorkflowRepository.
func (r *workflowRepositoryImpl) GetByCompanyID(ctx context.Context, companyID string) ([]workflow.ApprovalWorkflow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, created_at, updated_at
		FROM approval_workflows
		WHERE company_id = $1
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workflows []workflow.ApprovalWorkflow
	for rows.Next() {
		var wf workflow.ApprovalWorkflow
		if err := rows.Scan(&wf.ID, &wf.CompanyID, &wf.Name, &wf.CreatedAt, &wf.UpdatedAt); err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range workflows {
		steps, err := r.getSteps(ctx, workflows[i].ID)
		if err != nil {
			return nil, err
		}
		workflows[i].Steps = steps
	}

	return workflows, nil
}

// Delete implements workflow.WorkflowRepository.
func (r *workflowRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM approval_workflows WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return workflow.ErrWorkflowNotFound
	}
	return nil
}

func (r *workflowRepositoryImpl) getSteps(ctx context.Context, workflowID string) ([]workflow.WorkflowStep, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ws.id, ws.workflow_id, ws.approver_id, ws.sequence, u.name
		FROM workflow_steps ws
		INNER JOIN users u ON ws.approver_id = u.id
		WHERE ws.workflow_id = $1
		ORDER BY ws.sequence ASC
	`

	rows, err := q.Query(ctx, query, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []workflow.WorkflowStep
	for rows.Next() {
		var s workflow.WorkflowStep
		if err := rows.Scan(&s.ID, &s.WorkflowID, &s.ApproverID, &s.Sequence, &s.ApproverName); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}

	return steps, rows.Err()
}
