package user

import (
	"context"
)

type UserService interface {
	Create(ctx context.Context, companyID string, req CreateUserRequest) (UserResponse, error)
	GetByID(ctx context.Context, companyID, id string) (UserResponse, error)
	ListByCompany(ctx context.Context, companyID string) ([]UserResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateUserRequest) error
	Delete(ctx context.Context, companyID, id string) error
}
