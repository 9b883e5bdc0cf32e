package company

import (
	"context"
	"fmt"

	"github.com/expensahq/expensa-backend-go/internal/domain/company"
)

type CompanyServiceImpl struct {
	company.CompanyRepository
}

func NewCompanyService(companyRepository company.CompanyRepository) company.CompanyService {
	return &CompanyServiceImpl{
		CompanyRepository: companyRepository,
	}
}

// GetByID implements company.CompanyService.
func (c *CompanyServiceImpl) GetByID(ctx context.Context, id string) (company.CompanyResponse, error) {
	found, err := c.CompanyRepository.GetByID(ctx, id)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	return company.CompanyResponse{
		ID:              found.ID,
		Name:            found.Name,
		DefaultCurrency: found.DefaultCurrency,
		CreatedAt:       found.CreatedAt,
		UpdatedAt:       found.UpdatedAt,
	}, nil
}

// Update implements company.CompanyService.
func (c *CompanyServiceImpl) Update(ctx context.Context, id string, req company.UpdateCompanyRequest) error {
	if err := c.CompanyRepository.Update(ctx, id, req); err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	return nil
}
