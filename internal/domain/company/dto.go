package company

import (
	"time"

	"github.com/expensahq/expensa-backend-go/internal/pkg/validator"
)

type CompanyResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	DefaultCurrency string    `json:"default_currency"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type UpdateCompanyRequest struct {
	Name            *string `json:"name,omitempty"`
	DefaultCurrency *string `json:"default_currency,omitempty"`
}

func (r *UpdateCompanyRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name cannot be empty",
			})
		}
		if len(*r.Name) > 255 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 255 characters",
			})
		}
	}
	if r.DefaultCurrency != nil && !validator.IsValidCurrencyCode(*r.DefaultCurrency) {
		errs = append(errs, validator.ValidationError{
			Field:   "default_currency",
			Message: "default_currency must be a 3-letter uppercase code",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
