package expense

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/expensahq/expensa-backend-go/internal/domain/expense"
	"github.com/expensahq/expensa-backend-go/internal/domain/notification"
	"github.com/expensahq/expensa-backend-go/internal/domain/user"
	"github.com/expensahq/expensa-backend-go/internal/pkg/currency"
	"github.com/expensahq/expensa-backend-go/internal/pkg/database"
	"github.com/expensahq/expensa-backend-go/internal/pkg/ocr"
	"github.com/expensahq/expensa-backend-go/internal/pkg/storage"
	"github.com/expensahq/expensa-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testExpenseDB *database.DB

func expenseTestInit(t *testing.T) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if testExpenseDB != nil {
		return
	}

	var err error
	testExpenseDB, err = database.NewPostgreSQLDB(dsn)
	if err != nil {
		t.Fatal("Failed to connect to test database: " + err.Error())
	}
}

type expenseTestEnv struct {
	db               *database.DB
	expenseService   expense.ExpenseService
	approvalService  expense.ApprovalService
	approvalRepo     expense.ApprovalRepository
	expenseRepo      expense.ExpenseRepository
	notificationRepo notification.Repository
}

func newExpenseTestEnv(t *testing.T) *expenseTestEnv {
	t.Helper()
	expenseTestInit(t)

	expenseRepo := postgresql.NewExpenseRepository(testExpenseDB)
	approvalRepo := postgresql.NewApprovalRepository(testExpenseDB)
	workflowRepo := postgresql.NewWorkflowRepository(testExpenseDB)
	ruleRepo := postgresql.NewRuleRepository(testExpenseDB)
	userRepo := postgresql.NewUserRepository(testExpenseDB)
	companyRepo := postgresql.NewCompanyRepository(testExpenseDB)
	notificationRepo := postgresql.NewNotificationRepository(testExpenseDB)

	// Rate lookups fail against this address, which only means responses omit
	// the converted amount.
	converter := currency.NewConverter("http://127.0.0.1:1", time.Second)

	fileStorage, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	expenseService := NewExpenseService(
		testExpenseDB,
		expenseRepo,
		approvalRepo,
		workflowRepo,
		ruleRepo,
		userRepo,
		companyRepo,
		notificationRepo,
		converter,
		fileStorage,
		ocr.NewMockExtractor(),
	)
	approvalService := NewApprovalService(testExpenseDB, expenseRepo, approvalRepo, ruleRepo, userRepo, notificationRepo)

	return &expenseTestEnv{
		db:               testExpenseDB,
		expenseService:   expenseService,
		approvalService:  approvalService,
		approvalRepo:     approvalRepo,
		expenseRepo:      expenseRepo,
		notificationRepo: notificationRepo,
	}
}

func seedCompany(t *testing.T, ctx context.Context, name string) string {
	t.Helper()
	var id string
	err := testExpenseDB.QueryRow(ctx, `
		INSERT INTO companies (name, default_currency)
		VALUES ($1, 'USD')
		RETURNING id
	`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedUser(t *testing.T, ctx context.Context, companyID, name string, role user.Role, managerID *string) string {
	t.Helper()
	var id string
	email := fmt.Sprintf("%s-%s@example.com", name, uuid.NewString())
	err := testExpenseDB.QueryRow(ctx, `
		INSERT INTO users (company_id, email, name, password_hash, role, manager_id)
		VALUES ($1, $2, $3, 'x', $4, $5)
		RETURNING id
	`, companyID, email, name, string(role), managerID).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedWorkflow(t *testing.T, ctx context.Context, companyID, name string, approverIDs ...string) string {
	t.Helper()
	var id string
	err := testExpenseDB.QueryRow(ctx, `
		INSERT INTO approval_workflows (company_id, name)
		VALUES ($1, $2)
		RETURNING id
	`, companyID, name).Scan(&id)
	require.NoError(t, err)

	for i, approverID := range approverIDs {
		_, err := testExpenseDB.Exec(ctx, `
			INSERT INTO workflow_steps (workflow_id, approver_id, sequence)
			VALUES ($1, $2, $3)
		`, id, approverID, i+1)
		require.NoError(t, err)
	}
	return id
}

func seedSpecificApproverRule(t *testing.T, ctx context.Context, companyID, approverID string) {
	t.Helper()
	_, err := testExpenseDB.Exec(ctx, `
		INSERT INTO approval_rules (company_id, rule_type, specific_approver_id)
		VALUES ($1, 'specific_approver', $2)
	`, companyID, approverID)
	require.NoError(t, err)
}

func seedPercentageRule(t *testing.T, ctx context.Context, companyID string, threshold int) {
	t.Helper()
	_, err := testExpenseDB.Exec(ctx, `
		INSERT INTO approval_rules (company_id, rule_type, threshold_percentage)
		VALUES ($1, 'percentage', $2)
	`, companyID, threshold)
	require.NoError(t, err)
}

func submitExpense(t *testing.T, ctx context.Context, env *expenseTestEnv, companyID, employeeID string, workflowID *string) expense.ExpenseResponse {
	t.Helper()
	created, err := env.expenseService.Create(ctx, expense.CreateExpenseRequest{
		EmployeeID:  employeeID,
		CompanyID:   companyID,
		WorkflowID:  workflowID,
		Amount:      250,
		Currency:    "USD",
		Category:    "Travel",
		Description: "Client visit",
	})
	require.NoError(t, err)
	return created
}

func userMessages(t *testing.T, ctx context.Context, env *expenseTestEnv, userID string) []string {
	t.Helper()
	notifications, err := env.notificationRepo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	messages := make([]string, 0, len(notifications))
	for _, n := range notifications {
		messages = append(messages, n.Message)
	}
	return messages
}

// ===== SUBMISSION =====

func TestExpenseService_Create_WorkflowBuildsFullChain(t *testing.T) {
	ctx := context.Background()
	env := newExpenseTestEnv(t)

	companyID := seedCompany(t, ctx, "Acme")
	employeeID := seedUser(t, ctx, companyID, "erin", user.RoleEmployee, nil)
	approver1 := seedUser(t, ctx, companyID, "mara", user.RoleManager, nil)
	approver2 := seedUser(t, ctx, companyID, "finn", user.RoleManager, nil)
	workflowID := seedWorkflow(t, ctx, companyID, "Two step", approver1, approver2)

	created := submitExpense(t, ctx, env, companyID, employeeID, &workflowID)

	assert.Equal(t, expense.StatusPending, created.Status)

	// Every step becomes a pending approval row up front.
	approvals, err := env.approvalRepo.GetByExpenseID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 2)
	assert.Equal(t, approver1, approvals[0].ApproverID)
	assert.Equal(t, 1, approvals[0].Sequence)
	assert.Equal(t, expense.ApprovalStatusPending, approvals[0].Status)
	assert.Equal(t, approver2, approvals[1].ApproverID)
	assert.Equal(t, 2, approvals[1].Sequence)
	assert.Equal(t, expense.ApprovalStatusPending, approvals[1].Status)

	// Only the first approver hears about it.
	assert.Contains(t, userMessages(t, ctx, env, approver1), "New expense from erin needs your approval.")
	assert.Empty(t, userMessages(t, ctx, env, approver2))
}

func TestExpenseService_Create_ManagerFallback(t *testing.T) {
	ctx := context.Background()
	env := newExpenseTestEnv(t)

	companyID := seedCompany(t, ctx, "Acme")
	managerID := seedUser(t, ctx, companyID, "mara", user.RoleManager, nil)
	employeeID := seedUser(t, ctx, companyID, "erin", user.RoleEmployee, &managerID)

	created := submitExpense(t, ctx, env, companyID, employeeID, nil)

	approvals, err := env.approvalRepo.GetByExpenseID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	assert.Equal(t, managerID, approvals[0].ApproverID)
	assert.Equal(t, 1, approvals[0].Sequence)

	assert.Contains(t, userMessages(t, ctx, env, managerID), "New expense from erin needs your approval.")
}

func TestExpenseService_Create_NoWorkflowNoManager(t *testing.T) {
	ctx := context.Background()
	env := newExpenseTestEnv(t)

	companyID := seedCompany(t, ctx, "Acme")
	employeeID := seedUser(t, ctx, companyID, "erin", user.RoleEmployee, nil)

	created := submitExpense(t, ctx, env, companyID, employeeID, nil)

	// No approvers means the expense just sits pending with an empty chain.
	assert.Equal(t, expense.StatusPending, created.Status)
	approvals, err := env.approvalRepo.GetByExpenseID(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, approvals)
}

// ===== DECISIONS =====

func TestApprovalService_Act_RejectIsTerminal(t *testing.T) {
	ctx := context.Background()
	env := newExpenseTestEnv(t)

	companyID := seedCompany(t, ctx, "Acme")
	managerID := seedUser(t, ctx, companyID, "mara", user.RoleManager, nil)
	employeeID := seedUser(t, ctx, companyID, "erin", user.RoleEmployee, &managerID)
	created := submitExpense(t, ctx, env, companyID, employeeID, nil)

	approvals, err := env.approvalRepo.GetByExpenseID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 1)

	resolved, err := env.approvalService.Act(ctx, approvals[0].ID, expense.ApprovalActionRequest{
		ActorID:  managerID,
		Decision: expense.DecisionRejected,
		Comment:  "No receipt attached",
	})
	require.NoError(t, err)
	assert.Equal(t, expense.ApprovalStatusRejected, resolved.Status)
	require.NotNil(t, resolved.Comment)
	assert.Equal(t, "No receipt attached", *resolved.Comment)

	stored, err := env.expenseRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.StatusRejected, stored.Status)

	assert.Contains(t, userMessages(t, ctx, env, employeeID), "Your expense 'Client visit' was rejected by mara.")
}

func TestApprovalService_Act_ApproveAdvancesThroughChain(t *testing.T) {
	ctx := context.Background()
	env := newExpenseTestEnv(t)

	companyID := seedCompany(t, ctx, "Acme")
	employeeID := seedUser(t, ctx, companyID, "erin", user.RoleEmployee, nil)
	approver1 := seedUser(t, ctx, companyID, "mara", user.RoleManager, nil)
	approver2 := seedUser(t, ctx, companyID, "finn", user.RoleManager, nil)
	workflowID := seedWorkflow(t, ctx, companyID, "Two step", approver1, approver2)
	created := submitExpense(t, ctx, env, companyID, employeeID, &workflowID)

	approvals, err := env.approvalRepo.GetByExpenseID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 2)

	// First approval hands off to the next sequence.
	_, err = env.approvalService.Act(ctx, approvals[0].ID, expense.ApprovalActionRequest{
		ActorID:  approver1,
		Decision: expense.DecisionApproved,
	})
	require.NoError(t, err)

	stored, err := env.expenseRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.StatusInProgress, stored.Status)
	assert.Contains(t, userMessages(t, ctx, env, approver2), "Expense from erin is ready for your approval.")
	assert.Contains(t, userMessages(t, ctx, env, employeeID), "Your expense 'Client visit' was approved by mara.")

	// Resolving the last sequence finishes the expense.
	_, err = env.approvalService.Act(ctx, approvals[1].ID, expense.ApprovalActionRequest{
		ActorID:  approver2,
		Decision: expense.DecisionApproved,
	})
	require.NoError(t, err)

	stored, err = env.expenseRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.StatusApproved, stored.Status)
}

func TestApprovalService_Act_SingleStepApprove(t *testing.T) {
	ctx := context.Background()
	env := newExpenseTestEnv(t)

	companyID := seedCompany(t, ctx, "Acme")
	managerID := seedUser(t, ctx, companyID, "mara", user.RoleManager, nil)
	employeeID := seedUser(t, ctx, companyID, "erin", user.RoleEmployee, &managerID)
	created := submitExpense(t, ctx, env, companyID, employeeID, nil)

	approvals, err := env.approvalRepo.GetByExpenseID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 1)

	_, err = env.approvalService.Act(ctx, approvals[0].ID, expense.ApprovalActionRequest{
		ActorID:  managerID,
		Decision: expense.DecisionApproved,
	})
	require.NoError(t, err)

	stored, err := env.expenseRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.StatusApproved, stored.Status)
}

func TestApprovalService_Act_NotApprover(t *testing.T) {
	ctx := context.Background()
	env := newExpenseTestEnv(t)

	companyID := seedCompany(t, ctx, "Acme")
	managerID := seedUser(t, ctx, companyID, "mara", user.RoleManager, nil)
	employeeID := seedUser(t, ctx, companyID, "erin", user.RoleEmployee, &managerID)
	intruderID := seedUser(t, ctx, companyID, "zed", user.RoleEmployee, nil)
	created := submitExpense(t, ctx, env, companyID, employeeID, nil)

	approvals, err := env.approvalRepo.GetByExpenseID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 1)

	_, err = env.approvalService.Act(ctx, approvals[0].ID, expense.ApprovalActionRequest{
		ActorID:  intruderID,
		Decision: expense.DecisionApproved,
	})
	assert.ErrorIs(t, err, expense.ErrNotApprover)

	// Nothing moved.
	stored, err := env.expenseRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.StatusPending, stored.Status)
	approvals, err = env.approvalRepo.GetByExpenseID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.ApprovalStatusPending, approvals[0].Status)
}

func TestApprovalService_Act_AlreadyProcessed(t *testing.T) {
	ctx := context.Background()
	env := newExpenseTestEnv(t)

	companyID := seedCompany(t, ctx, "Acme")
	managerID := seedUser(t, ctx, companyID, "mara", user.RoleManager, nil)
	employeeID := seedUser(t, ctx, companyID, "erin", user.RoleEmployee, &managerID)
	created := submitExpense(t, ctx, env, companyID, employeeID, nil)

	approvals, err := env.approvalRepo.GetByExpenseID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 1)

	req := expense.ApprovalActionRequest{ActorID: managerID, Decision: expense.DecisionApproved}
	_, err = env.approvalService.Act(ctx, approvals[0].ID, req)
	require.NoError(t, err)

	_, err = env.approvalService.Act(ctx, approvals[0].ID, req)
	assert.ErrorIs(t, err, expense.ErrApprovalAlreadyProcessed)
}

// ===== CONDITIONAL RULES =====

func TestApprovalService_Act_SpecificApproverShortCircuits(t *testing.T) {
	ctx := context.Background()
	env := newExpenseTestEnv(t)

	companyID := seedCompany(t, ctx, "Acme")
	employeeID := seedUser(t, ctx, companyID, "erin", user.RoleEmployee, nil)
	cfoID := seedUser(t, ctx, companyID, "vera", user.RoleManager, nil)
	approver2 := seedUser(t, ctx, companyID, "finn", user.RoleManager, nil)
	approver3 := seedUser(t, ctx, companyID, "mara", user.RoleManager, nil)
	workflowID := seedWorkflow(t, ctx, companyID, "Three step", cfoID, approver2, approver3)
	seedSpecificApproverRule(t, ctx, companyID, cfoID)

	created := submitExpense(t, ctx, env, companyID, employeeID, &workflowID)

	approvals, err := env.approvalRepo.GetByExpenseID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 3)

	_, err = env.approvalService.Act(ctx, approvals[0].ID, expense.ApprovalActionRequest{
		ActorID:  cfoID,
		Decision: expense.DecisionApproved,
	})
	require.NoError(t, err)

	// The remaining sequences are skipped entirely.
	stored, err := env.expenseRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.StatusApproved, stored.Status)
	assert.Contains(t, userMessages(t, ctx, env, employeeID), "Expense auto-approved by conditional rule.")
	assert.Empty(t, userMessages(t, ctx, env, approver2))
}

func TestApprovalService_Act_PercentageRuleShortCircuits(t *testing.T) {
	ctx := context.Background()
	env := newExpenseTestEnv(t)

	companyID := seedCompany(t, ctx, "Acme")
	employeeID := seedUser(t, ctx, companyID, "erin", user.RoleEmployee, nil)
	approver1 := seedUser(t, ctx, companyID, "mara", user.RoleManager, nil)
	approver2 := seedUser(t, ctx, companyID, "finn", user.RoleManager, nil)
	workflowID := seedWorkflow(t, ctx, companyID, "Two step", approver1, approver2)
	seedPercentageRule(t, ctx, companyID, 50)

	created := submitExpense(t, ctx, env, companyID, employeeID, &workflowID)

	approvals, err := env.approvalRepo.GetByExpenseID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 2)

	// One of two approved is exactly the 50% threshold.
	_, err = env.approvalService.Act(ctx, approvals[0].ID, expense.ApprovalActionRequest{
		ActorID:  approver1,
		Decision: expense.DecisionApproved,
	})
	require.NoError(t, err)

	stored, err := env.expenseRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.StatusApproved, stored.Status)
	assert.Contains(t, userMessages(t, ctx, env, employeeID), "Expense auto-approved by conditional rule.")
}

// ===== QUEUE =====

func TestApprovalService_ListPending(t *testing.T) {
	ctx := context.Background()
	env := newExpenseTestEnv(t)

	companyID := seedCompany(t, ctx, "Acme")
	managerID := seedUser(t, ctx, companyID, "mara", user.RoleManager, nil)
	employeeID := seedUser(t, ctx, companyID, "erin", user.RoleEmployee, &managerID)

	first := submitExpense(t, ctx, env, companyID, employeeID, nil)
	second := submitExpense(t, ctx, env, companyID, employeeID, nil)

	pending, err := env.approvalService.ListPending(ctx, managerID)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	// Resolving one removes it from the queue.
	firstApprovals, err := env.approvalRepo.GetByExpenseID(ctx, first.ID)
	require.NoError(t, err)
	_, err = env.approvalService.Act(ctx, firstApprovals[0].ID, expense.ApprovalActionRequest{
		ActorID:  managerID,
		Decision: expense.DecisionApproved,
	})
	require.NoError(t, err)

	pending, err = env.approvalService.ListPending(ctx, managerID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ExpenseID)
}

// ===== OVERRIDE =====

func TestExpenseService_Override_AdminOnly(t *testing.T) {
	ctx := context.Background()
	env := newExpenseTestEnv(t)

	companyID := seedCompany(t, ctx, "Acme")
	managerID := seedUser(t, ctx, companyID, "mara", user.RoleManager, nil)
	employeeID := seedUser(t, ctx, companyID, "erin", user.RoleEmployee, &managerID)
	created := submitExpense(t, ctx, env, companyID, employeeID, nil)

	manager := user.User{ID: managerID, CompanyID: companyID, Role: user.RoleManager}
	_, err := env.expenseService.Override(ctx, manager, created.ID, expense.OverrideRequest{Decision: expense.DecisionApproved})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}

func TestExpenseService_Override_ForcesStatusAndLeavesChain(t *testing.T) {
	ctx := context.Background()
	env := newExpenseTestEnv(t)

	companyID := seedCompany(t, ctx, "Acme")
	adminID := seedUser(t, ctx, companyID, "ada", user.RoleAdmin, nil)
	managerID := seedUser(t, ctx, companyID, "mara", user.RoleManager, nil)
	employeeID := seedUser(t, ctx, companyID, "erin", user.RoleEmployee, &managerID)
	created := submitExpense(t, ctx, env, companyID, employeeID, nil)

	admin := user.User{ID: adminID, CompanyID: companyID, Role: user.RoleAdmin}
	overridden, err := env.expenseService.Override(ctx, admin, created.ID, expense.OverrideRequest{Decision: expense.DecisionApproved})
	require.NoError(t, err)
	assert.Equal(t, expense.StatusApproved, overridden.Status)

	// The chain is untouched; the manager's row stays pending.
	approvals, err := env.approvalRepo.GetByExpenseID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	assert.Equal(t, expense.ApprovalStatusPending, approvals[0].Status)

	assert.Contains(t, userMessages(t, ctx, env, employeeID), "Your expense 'Client visit' was overridden to 'approved' by an administrator.")
}

// ===== VISIBILITY =====

func TestExpenseService_GetByID_ApproverCanView(t *testing.T) {
	ctx := context.Background()
	env := newExpenseTestEnv(t)

	companyID := seedCompany(t, ctx, "Acme")
	employeeID := seedUser(t, ctx, companyID, "erin", user.RoleEmployee, nil)
	approverID := seedUser(t, ctx, companyID, "finn", user.RoleEmployee, nil)
	outsiderID := seedUser(t, ctx, companyID, "zed", user.RoleEmployee, nil)
	workflowID := seedWorkflow(t, ctx, companyID, "One step", approverID)
	created := submitExpense(t, ctx, env, companyID, employeeID, &workflowID)

	approver := user.User{ID: approverID, CompanyID: companyID, Role: user.RoleEmployee}
	got, err := env.expenseService.GetByID(ctx, approver, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	require.Len(t, got.Approvals, 1)

	outsider := user.User{ID: outsiderID, CompanyID: companyID, Role: user.RoleEmployee}
	_, err = env.expenseService.GetByID(ctx, outsider, created.ID)
	assert.ErrorIs(t, err, expense.ErrExpenseNotFound)
}
