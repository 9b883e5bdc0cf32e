package company

import "errors"

var (
	ErrCompanyNotFound          = errors.New("company not found")
	ErrInvalidCompanyName       = errors.New("company name cannot be empty")
	ErrInvalidDefaultCurrency   = errors.New("default currency must be a 3-letter code")
	ErrUpdatedAtBeforeCreatedAt = errors.New("updated_at cannot be before created_at")
)
