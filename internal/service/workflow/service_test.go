package workflow

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/expensahq/expensa-backend-go/internal/domain/user"
	"github.com/expensahq/expensa-backend-go/internal/domain/workflow"
	"github.com/expensahq/expensa-backend-go/internal/pkg/database"
	"github.com/expensahq/expensa-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWorkflowDB *database.DB

func workflowTestInit(t *testing.T) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if testWorkflowDB != nil {
		return
	}

	var err error
	testWorkflowDB, err = database.NewPostgreSQLDB(dsn)
	if err != nil {
		t.Fatal("Failed to connect to test database: " + err.Error())
	}
}

func newWorkflowTestService(t *testing.T) workflow.WorkflowService {
	t.Helper()
	workflowTestInit(t)
	return NewWorkflowService(
		testWorkflowDB,
		postgresql.NewWorkflowRepository(testWorkflowDB),
		postgresql.NewRuleRepository(testWorkflowDB),
		postgresql.NewUserRepository(testWorkflowDB),
	)
}

func createWorkflowTestCompany(t *testing.T, ctx context.Context, name string) string {
	t.Helper()
	var id string
	err := testWorkflowDB.QueryRow(ctx, `
		INSERT INTO companies (name, default_currency)
		VALUES ($1, 'USD')
		RETURNING id
	`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

func createWorkflowTestUser(t *testing.T, ctx context.Context, companyID, name string, role user.Role) string {
	t.Helper()
	var id string
	email := fmt.Sprintf("%s-%s@example.com", name, uuid.NewString())
	err := testWorkflowDB.QueryRow(ctx, `
		INSERT INTO users (company_id, email, name, password_hash, role)
		VALUES ($1, $2, $3, 'x', $4)
		RETURNING id
	`, companyID, email, name, string(role)).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestWorkflowService_CreateWorkflow_Success(t *testing.T) {
	ctx := context.Background()
	svc := newWorkflowTestService(t)

	companyID := createWorkflowTestCompany(t, ctx, "Acme")
	approver1 := createWorkflowTestUser(t, ctx, companyID, "mara", user.RoleManager)
	approver2 := createWorkflowTestUser(t, ctx, companyID, "finn", user.RoleManager)

	created, err := svc.CreateWorkflow(ctx, companyID, workflow.CreateWorkflowRequest{
		Name: "Travel approvals",
		Steps: []workflow.WorkflowStepRequest{
			{ApproverID: approver1, Sequence: 1},
			{ApproverID: approver2, Sequence: 2},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Travel approvals", created.Name)
	require.Len(t, created.Steps, 2)
	assert.Equal(t, approver1, created.Steps[0].ApproverID)
	assert.Equal(t, 1, created.Steps[0].Sequence)
	assert.Equal(t, approver2, created.Steps[1].ApproverID)
	assert.Equal(t, 2, created.Steps[1].Sequence)
}

func TestWorkflowService_CreateWorkflow_UnknownApprover(t *testing.T) {
	ctx := context.Background()
	svc := newWorkflowTestService(t)

	companyID := createWorkflowTestCompany(t, ctx, "Acme")

	_, err := svc.CreateWorkflow(ctx, companyID, workflow.CreateWorkflowRequest{
		Name: "Broken",
		Steps: []workflow.WorkflowStepRequest{
			{ApproverID: uuid.NewString(), Sequence: 1},
		},
	})
	assert.ErrorIs(t, err, user.ErrManagerNotFound)
}

func TestWorkflowService_CreateWorkflow_ApproverFromOtherCompany(t *testing.T) {
	ctx := context.Background()
	svc := newWorkflowTestService(t)

	companyID := createWorkflowTestCompany(t, ctx, "Acme")
	otherCompanyID := createWorkflowTestCompany(t, ctx, "Rival")
	outsider := createWorkflowTestUser(t, ctx, otherCompanyID, "mara", user.RoleManager)

	_, err := svc.CreateWorkflow(ctx, companyID, workflow.CreateWorkflowRequest{
		Name: "Broken",
		Steps: []workflow.WorkflowStepRequest{
			{ApproverID: outsider, Sequence: 1},
		},
	})
	assert.ErrorIs(t, err, user.ErrCompanyMismatch)
}

func TestWorkflowService_GetWorkflow_CompanyScoped(t *testing.T) {
	ctx := context.Background()
	svc := newWorkflowTestService(t)

	companyID := createWorkflowTestCompany(t, ctx, "Acme")
	otherCompanyID := createWorkflowTestCompany(t, ctx, "Rival")
	approver := createWorkflowTestUser(t, ctx, companyID, "mara", user.RoleManager)

	created, err := svc.CreateWorkflow(ctx, companyID, workflow.CreateWorkflowRequest{
		Name: "Travel approvals",
		Steps: []workflow.WorkflowStepRequest{
			{ApproverID: approver, Sequence: 1},
		},
	})
	require.NoError(t, err)

	got, err := svc.GetWorkflow(ctx, companyID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// Another company cannot see it at all.
	_, err = svc.GetWorkflow(ctx, otherCompanyID, created.ID)
	assert.ErrorIs(t, err, workflow.ErrWorkflowNotFound)
}

func TestWorkflowService_DeleteWorkflow(t *testing.T) {
	ctx := context.Background()
	svc := newWorkflowTestService(t)

	companyID := createWorkflowTestCompany(t, ctx, "Acme")
	approver := createWorkflowTestUser(t, ctx, companyID, "mara", user.RoleManager)

	created, err := svc.CreateWorkflow(ctx, companyID, workflow.CreateWorkflowRequest{
		Name: "Disposable",
		Steps: []workflow.WorkflowStepRequest{
			{ApproverID: approver, Sequence: 1},
		},
	})
	require.NoError(t, err)

	err = svc.DeleteWorkflow(ctx, companyID, created.ID)
	require.NoError(t, err)

	_, err = svc.GetWorkflow(ctx, companyID, created.ID)
	assert.ErrorIs(t, err, workflow.ErrWorkflowNotFound)
}

func TestWorkflowService_CreateRule_SpecificApproverValidated(t *testing.T) {
	ctx := context.Background()
	svc := newWorkflowTestService(t)

	companyID := createWorkflowTestCompany(t, ctx, "Acme")
	cfoID := createWorkflowTestUser(t, ctx, companyID, "vera", user.RoleManager)

	created, err := svc.CreateRule(ctx, companyID, workflow.CreateRuleRequest{
		RuleType:           workflow.RuleTypeSpecificApprover,
		SpecificApproverID: &cfoID,
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.RuleTypeSpecificApprover, created.RuleType)
	require.NotNil(t, created.SpecificApproverID)
	assert.Equal(t, cfoID, *created.SpecificApproverID)

	unknown := uuid.NewString()
	_, err = svc.CreateRule(ctx, companyID, workflow.CreateRuleRequest{
		RuleType:           workflow.RuleTypeSpecificApprover,
		SpecificApproverID: &unknown,
	})
	assert.ErrorIs(t, err, user.ErrManagerNotFound)
}

func TestWorkflowService_ListRules_CreationOrder(t *testing.T) {
	ctx := context.Background()
	svc := newWorkflowTestService(t)

	companyID := createWorkflowTestCompany(t, ctx, "Acme")
	cfoID := createWorkflowTestUser(t, ctx, companyID, "vera", user.RoleManager)

	threshold := 60
	first, err := svc.CreateRule(ctx, companyID, workflow.CreateRuleRequest{
		RuleType:            workflow.RuleTypePercentage,
		ThresholdPercentage: &threshold,
	})
	require.NoError(t, err)
	second, err := svc.CreateRule(ctx, companyID, workflow.CreateRuleRequest{
		RuleType:           workflow.RuleTypeSpecificApprover,
		SpecificApproverID: &cfoID,
	})
	require.NoError(t, err)

	rules, err := svc.ListRules(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, first.ID, rules[0].ID)
	assert.Equal(t, second.ID, rules[1].ID)
}
