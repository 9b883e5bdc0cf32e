package postgresql

import (
	"context"

	"github.com/expensahq/expensa-backend-go/internal/domain/workflow"
	"github.com/expensahq/expensa-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type ruleRepositoryImpl struct {
	db *database.DB
}

func NewRuleRepository(db *database.DB) workflow.RuleRepository {
	return &ruleRepositoryImpl{db: db}
}

// Create implements workflow.RuleRepository.
func (r *ruleRepositoryImpl) Create(ctx context.Context, rule workflow.ApprovalRule) (workflow.ApprovalRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO approval_rules (company_id, rule_type, threshold_percentage, specific_approver_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, company_id, rule_type, threshold_percentage, specific_approver_id, created_at
	`

	var created workflow.ApprovalRule
	err := q.QueryRow(ctx, query, rule.CompanyID, rule.RuleType, rule.ThresholdPercentage, rule.SpecificApproverID).
		Scan(&created.ID, &created.CompanyID, &created.RuleType, &created.ThresholdPercentage, &created.SpecificApproverID, &created.CreatedAt)
	if err != nil {
		return workflow.ApprovalRule{}, err
	}
	return created, nil
}

// GetByID implements workflow.RuleRepository.
func (r *ruleRepositoryImpl) GetByID(ctx context.Context, id string) (workflow.ApprovalRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, rule_type, threshold_percentage, specific_approver_id, created_at
		FROM approval_rules
		WHERE id = $1
	`

	var found workflow.ApprovalRule
	err := q.QueryRow(ctx, query, id).
		Scan(&found.ID, &found.CompanyID, &found.RuleType, &found.ThresholdPercentage, &found.SpecificApproverID, &found.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return workflow.ApprovalRule{}, workflow.ErrRuleNotFound
		}
		return workflow.ApprovalRule{}, err
	}

	return found, nil
}

// GetByCompanyID implements workflow.RuleRepository. Rules come back in
// creation order so evaluation is deterministic.
func (r *ruleRepositoryImpl) GetByCompanyID(ctx context.Context, companyID string) ([]workflow.ApprovalRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, rule_type, threshold_percentage, specific_approver_id, created_at
		FROM approval_rules
		WHERE company_id = $1
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []workflow.ApprovalRule
	for rows.Next() {
		var rule workflow.ApprovalRule
		err := rows.Scan(&rule.ID, &rule.CompanyID, &rule.RuleType, &rule.ThresholdPercentage, &rule.SpecificApproverID, &rule.CreatedAt)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// Delete implements workflow.RuleRepository.
func (r *ruleRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM approval_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return workflow.ErrRuleNotFound
	}
	return nil
}
