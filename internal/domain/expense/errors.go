package expense

import "errors"

var (
	ErrExpenseNotFound          = errors.New("expense not found")
	ErrApprovalNotFound         = errors.New("approval not found")
	ErrNotApprover              = errors.New("acting user is not the assigned approver")
	ErrApprovalAlreadyProcessed = errors.New("approval has already been processed")
	ErrInvalidDecision          = errors.New("decision must be approved or rejected")
	ErrNotExpenseOwner          = errors.New("expense belongs to another employee")
	ErrMissingReceipt           = errors.New("no receipt file provided")
)
