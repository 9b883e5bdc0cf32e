package user

import (
	"context"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByCompanyID(ctx context.Context, companyID string) ([]User, error)
	Create(ctx context.Context, newUser User) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	LinkGoogleAccount(ctx context.Context, googleID string, email string) (User, error)
	Delete(ctx context.Context, id string) error
}
