package response

import (
	"errors"
	"net/http"

	"github.com/expensahq/expensa-backend-go/internal/domain/auth"
	"github.com/expensahq/expensa-backend-go/internal/domain/company"
	"github.com/expensahq/expensa-backend-go/internal/domain/expense"
	"github.com/expensahq/expensa-backend-go/internal/domain/notification"
	"github.com/expensahq/expensa-backend-go/internal/domain/user"
	"github.com/expensahq/expensa-backend-go/internal/domain/workflow"
	"github.com/expensahq/expensa-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Auth domain errors
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrRefreshTokenCookieNotFound),
		errors.Is(err, auth.ErrRefreshTokenCookieEmpty):
		Unauthorized(w, "Refresh token missing")
	case errors.Is(err, auth.ErrEmailNotVerified):
		Forbidden(w, "Email not verified")
	case errors.Is(err, auth.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, auth.ErrCompanyNotFound):
		NotFound(w, "Company not found")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrManagerNotFound):
		NotFound(w, "Manager not found")
	case errors.Is(err, user.ErrManagerRoleRequired):
		BadRequest(w, "Assigned manager must have manager or admin role", nil)
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")
	case errors.Is(err, user.ErrCompanyMismatch):
		BadRequest(w, "User belongs to a different company", nil)

	// Company domain errors
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")

	// Workflow domain errors
	case errors.Is(err, workflow.ErrWorkflowNotFound):
		NotFound(w, "Approval workflow not found")
	case errors.Is(err, workflow.ErrRuleNotFound):
		NotFound(w, "Approval rule not found")

	// Expense domain errors
	case errors.Is(err, expense.ErrExpenseNotFound):
		NotFound(w, "Expense not found")
	case errors.Is(err, expense.ErrApprovalNotFound):
		NotFound(w, "Approval not found")
	case errors.Is(err, expense.ErrNotApprover):
		Forbidden(w, "Not authorized to act on this approval")
	case errors.Is(err, expense.ErrApprovalAlreadyProcessed):
		Conflict(w, "This approval has already been processed")
	case errors.Is(err, expense.ErrInvalidDecision):
		BadRequest(w, "Decision must be 'approved' or 'rejected'", nil)
	case errors.Is(err, expense.ErrNotExpenseOwner):
		Forbidden(w, "You can only upload receipts for your own expenses")
	case errors.Is(err, expense.ErrMissingReceipt):
		BadRequest(w, "No receipt file provided", nil)

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
