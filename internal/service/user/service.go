package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/expensahq/expensa-backend-go/internal/domain/company"
	"github.com/expensahq/expensa-backend-go/internal/domain/user"
	"github.com/expensahq/expensa-backend-go/internal/pkg/email"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	user.UserRepository
	company.CompanyRepository
	emailService email.EmailService
	frontendURL  string
}

func NewUserService(userRepository user.UserRepository, companyRepository company.CompanyRepository, emailService email.EmailService, frontendURL string) user.UserService {
	return &UserServiceImpl{
		UserRepository:    userRepository,
		CompanyRepository: companyRepository,
		emailService:      emailService,
		frontendURL:       frontendURL,
	}
}

// Create implements user.UserService. Only admins reach this; the handler
// enforces that. The manager reference, when present, must point to a
// manager or admin inside the same company.
func (s *UserServiceImpl) Create(ctx context.Context, companyID string, req user.CreateUserRequest) (user.UserResponse, error) {
	exists, err := s.UserRepository.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to check existing email: %w", err)
	}
	if exists {
		return user.UserResponse{}, user.ErrUserEmailExists
	}

	if req.ManagerID != nil {
		if err := s.validateManager(ctx, companyID, *req.ManagerID); err != nil {
			return user.UserResponse{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hashedPassword := string(hash)

	created, err := s.UserRepository.Create(ctx, user.User{
		CompanyID:    companyID,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: &hashedPassword,
		Role:         req.Role,
		ManagerID:    req.ManagerID,
	})
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	companyData, err := s.CompanyRepository.GetByID(ctx, companyID)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to get company: %w", err)
	}

	go func() {
		err := s.emailService.SendAccountCreated(created.Email, created.Name, companyData.Name, s.frontendURL+"/login")
		if err != nil {
			slog.Error("Failed to send account created email", "user_id", created.ID, "error", err)
		}
	}()

	return created.ToResponse(), nil
}

// GetByID implements user.UserService.
func (s *UserServiceImpl) GetByID(ctx context.Context, companyID, id string) (user.UserResponse, error) {
	found, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	if found.CompanyID != companyID {
		return user.UserResponse{}, user.ErrUserNotFound
	}
	return found.ToResponse(), nil
}

// ListByCompany implements user.UserService.
func (s *UserServiceImpl) ListByCompany(ctx context.Context, companyID string) ([]user.UserResponse, error) {
	users, err := s.UserRepository.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]user.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	return responses, nil
}

// Update implements user.UserService.
func (s *UserServiceImpl) Update(ctx context.Context, companyID, id string, req user.UpdateUserRequest) error {
	found, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if found.CompanyID != companyID {
		return user.ErrUserNotFound
	}

	if req.ManagerID != nil {
		if err := s.validateManager(ctx, companyID, *req.ManagerID); err != nil {
			return err
		}
	}

	return s.UserRepository.Update(ctx, id, req)
}

// Delete implements user.UserService.
func (s *UserServiceImpl) Delete(ctx context.Context, companyID, id string) error {
	found, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if found.CompanyID != companyID {
		return user.ErrUserNotFound
	}

	return s.UserRepository.Delete(ctx, id)
}

func (s *UserServiceImpl) validateManager(ctx context.Context, companyID, managerID string) error {
	manager, err := s.UserRepository.GetByID(ctx, managerID)
	if err != nil {
		if err == user.ErrUserNotFound {
			return user.ErrManagerNotFound
		}
		return fmt.Errorf("failed to get manager: %w", err)
	}
	if manager.CompanyID != companyID {
		return user.ErrCompanyMismatch
	}
	if !manager.CanBeManager() {
		return user.ErrManagerRoleRequired
	}
	return nil
}
