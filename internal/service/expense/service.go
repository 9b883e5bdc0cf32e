package expense

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/expensahq/expensa-backend-go/internal/domain/company"
	"github.com/expensahq/expensa-backend-go/internal/domain/expense"
	"github.com/expensahq/expensa-backend-go/internal/domain/notification"
	"github.com/expensahq/expensa-backend-go/internal/domain/user"
	"github.com/expensahq/expensa-backend-go/internal/domain/workflow"
	"github.com/expensahq/expensa-backend-go/internal/pkg/currency"
	"github.com/expensahq/expensa-backend-go/internal/pkg/database"
	"github.com/expensahq/expensa-backend-go/internal/pkg/ocr"
	"github.com/expensahq/expensa-backend-go/internal/pkg/storage"
	"github.com/expensahq/expensa-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ExpenseServiceImpl struct {
	db               *database.DB
	expenseRepo      expense.ExpenseRepository
	approvalRepo     expense.ApprovalRepository
	workflowRepo     workflow.WorkflowRepository
	ruleRepo         workflow.RuleRepository
	userRepo         user.UserRepository
	companyRepo      company.CompanyRepository
	notificationRepo notification.Repository
	converter        currency.Converter
	fileStorage      storage.FileStorage
	extractor        ocr.Extractor
}

func NewExpenseService(
	db *database.DB,
	expenseRepo expense.ExpenseRepository,
	approvalRepo expense.ApprovalRepository,
	workflowRepo workflow.WorkflowRepository,
	ruleRepo workflow.RuleRepository,
	userRepo user.UserRepository,
	companyRepo company.CompanyRepository,
	notificationRepo notification.Repository,
	converter currency.Converter,
	fileStorage storage.FileStorage,
	extractor ocr.Extractor,
) expense.ExpenseService {
	return &ExpenseServiceImpl{
		db:               db,
		expenseRepo:      expenseRepo,
		approvalRepo:     approvalRepo,
		workflowRepo:     workflowRepo,
		ruleRepo:         ruleRepo,
		userRepo:         userRepo,
		companyRepo:      companyRepo,
		notificationRepo: notificationRepo,
		converter:        converter,
		fileStorage:      fileStorage,
		extractor:        extractor,
	}
}

// notify records one notification row. Fire-and-forget from the workflow's
// perspective, but persisted through the transactional querier so it commits
// with the decision that produced it.
func (s *ExpenseServiceImpl) notify(ctx context.Context, userID, message string) error {
	n := &notification.Notification{
		UserID:  userID,
		Message: message,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// Create implements expense.ExpenseService. The expense and its full
// approval chain are persisted in one transaction.
func (s *ExpenseServiceImpl) Create(ctx context.Context, req expense.CreateExpenseRequest) (expense.ExpenseResponse, error) {
	employee, err := s.userRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return expense.ExpenseResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	var wf *workflow.ApprovalWorkflow
	if req.WorkflowID != nil {
		found, err := s.workflowRepo.GetByID(ctx, *req.WorkflowID)
		if err != nil {
			return expense.ExpenseResponse{}, err
		}
		if found.CompanyID != req.CompanyID {
			return expense.ExpenseResponse{}, workflow.ErrWorkflowNotFound
		}
		wf = &found
	}

	var created expense.Expense
	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		var err error
		created, err = s.expenseRepo.Create(txCtx, expense.Expense{
			CompanyID:   req.CompanyID,
			EmployeeID:  req.EmployeeID,
			WorkflowID:  req.WorkflowID,
			Amount:      req.Amount,
			Currency:    req.Currency,
			Category:    req.Category,
			Description: req.Description,
			Status:      expense.StatusPending,
		})
		if err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}

		return s.buildApprovalChain(txCtx, created, employee, wf)
	})
	if err != nil {
		return expense.ExpenseResponse{}, err
	}

	created.EmployeeName = &employee.Name
	return created.ToResponse(), nil
}

// List implements expense.ExpenseService.
func (s *ExpenseServiceImpl) List(ctx context.Context, actor user.User) ([]expense.ExpenseResponse, error) {
	var expenses []expense.Expense
	var err error

	switch actor.Role {
	case user.RoleAdmin:
		expenses, err = s.expenseRepo.GetByCompanyID(ctx, actor.CompanyID)
	case user.RoleManager:
		expenses, err = s.expenseRepo.GetByManagerID(ctx, actor.ID)
	default:
		expenses, err = s.expenseRepo.GetByEmployeeID(ctx, actor.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	responses := make([]expense.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		responses = append(responses, expenses[i].ToResponse())
	}
	return responses, nil
}

// GetByID implements expense.ExpenseService. The response carries the
// approval chain and, when the rate lookup succeeds, the amount converted to
// the company default currency. Conversion failure leaves the converted
// fields absent.
func (s *ExpenseServiceImpl) GetByID(ctx context.Context, actor user.User, id string) (expense.ExpenseResponse, error) {
	found, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return expense.ExpenseResponse{}, err
	}

	if err := s.canView(ctx, actor, found); err != nil {
		return expense.ExpenseResponse{}, err
	}

	resp := found.ToResponse()

	approvals, err := s.approvalRepo.GetByExpenseID(ctx, id)
	if err != nil {
		return expense.ExpenseResponse{}, fmt.Errorf("failed to get approvals: %w", err)
	}
	for i := range approvals {
		resp.Approvals = append(resp.Approvals, approvals[i].ToResponse())
	}

	companyData, err := s.companyRepo.GetByID(ctx, found.CompanyID)
	if err != nil {
		return expense.ExpenseResponse{}, fmt.Errorf("failed to get company: %w", err)
	}
	if converted := s.converter.Convert(ctx, found.Amount, found.Currency, companyData.DefaultCurrency); converted != nil {
		resp.ConvertedAmount = converted
		resp.ConvertedCurrency = &companyData.DefaultCurrency
	}

	return resp, nil
}

func (s *ExpenseServiceImpl) canView(ctx context.Context, actor user.User, exp expense.Expense) error {
	if exp.CompanyID != actor.CompanyID {
		return expense.ErrExpenseNotFound
	}
	if actor.Role == user.RoleAdmin {
		return nil
	}
	if exp.EmployeeID == actor.ID {
		return nil
	}
	if actor.Role == user.RoleManager {
		employee, err := s.userRepo.GetByID(ctx, exp.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to get expense owner: %w", err)
		}
		if employee.ManagerID != nil && *employee.ManagerID == actor.ID {
			return nil
		}
	}
	// An assigned approver can see the expense they are deciding on.
	approvals, err := s.approvalRepo.GetByExpenseID(ctx, exp.ID)
	if err != nil {
		return fmt.Errorf("failed to get approvals: %w", err)
	}
	for _, a := range approvals {
		if a.ApproverID == actor.ID {
			return nil
		}
	}
	return expense.ErrExpenseNotFound
}

// Override implements expense.ExpenseService. The admin trapdoor: forces a
// terminal status without touching the approval chain, so outstanding
// approval rows may stay pending forever.
func (s *ExpenseServiceImpl) Override(ctx context.Context, actor user.User, expenseID string, req expense.OverrideRequest) (expense.ExpenseResponse, error) {
	if !actor.IsAdmin() {
		return expense.ExpenseResponse{}, user.ErrAdminPrivilegeRequired
	}

	found, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		return expense.ExpenseResponse{}, err
	}
	if found.CompanyID != actor.CompanyID {
		return expense.ExpenseResponse{}, expense.ErrExpenseNotFound
	}

	newStatus := expense.Status(req.Decision)
	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := s.expenseRepo.UpdateStatus(txCtx, expenseID, newStatus); err != nil {
			return fmt.Errorf("failed to override expense status: %w", err)
		}

		message := fmt.Sprintf("Your expense '%s' was overridden to '%s' by an administrator.", found.Description, req.Decision)
		return s.notify(txCtx, found.EmployeeID, message)
	})
	if err != nil {
		return expense.ExpenseResponse{}, err
	}

	found.Status = newStatus
	return found.ToResponse(), nil
}

// UploadReceipt implements expense.ExpenseService. Stores the file, runs the
// extractor and overwrites the expense's amount, description and category
// with whatever was read off the receipt.
func (s *ExpenseServiceImpl) UploadReceipt(ctx context.Context, req expense.UploadReceiptRequest) (expense.ReceiptDataResponse, error) {
	found, err := s.expenseRepo.GetByID(ctx, req.ExpenseID)
	if err != nil {
		return expense.ReceiptDataResponse{}, err
	}
	if found.EmployeeID != req.ActorID {
		return expense.ReceiptDataResponse{}, expense.ErrNotExpenseOwner
	}

	ext := filepath.Ext(req.FileHeader.Filename)
	path := fmt.Sprintf("receipts/%s/%s%s", found.ID, uuid.NewString(), ext)

	storedPath, err := s.fileStorage.Upload(ctx, req.File, path, req.FileHeader.Header.Get("Content-Type"))
	if err != nil {
		return expense.ReceiptDataResponse{}, fmt.Errorf("failed to store receipt: %w", err)
	}

	if _, err := req.File.Seek(0, 0); err != nil {
		return expense.ReceiptDataResponse{}, fmt.Errorf("failed to rewind receipt file: %w", err)
	}

	data, err := s.extractor.Extract(ctx, req.File, req.FileHeader.Filename)
	if err != nil {
		return expense.ReceiptDataResponse{}, fmt.Errorf("failed to extract receipt data: %w", err)
	}

	receiptData := expense.ReceiptDataResponse{
		Amount:      data.Amount,
		Description: data.Description,
		Category:    data.Category,
	}

	receiptURL, err := s.fileStorage.GetURL(ctx, storedPath, 24*time.Hour)
	if err != nil {
		return expense.ReceiptDataResponse{}, fmt.Errorf("failed to build receipt url: %w", err)
	}

	if err := s.expenseRepo.UpdateReceipt(ctx, found.ID, receiptURL, &receiptData); err != nil {
		return expense.ReceiptDataResponse{}, fmt.Errorf("failed to update expense with receipt data: %w", err)
	}

	return receiptData, nil
}
