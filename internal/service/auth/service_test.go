package auth

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/expensahq/expensa-backend-go/internal/domain/auth"
	"github.com/expensahq/expensa-backend-go/internal/domain/user"
	"github.com/expensahq/expensa-backend-go/internal/pkg/database"
	"github.com/expensahq/expensa-backend-go/internal/pkg/jwt"
	"github.com/expensahq/expensa-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuthDB *database.DB

func authTestInit(t *testing.T) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if testAuthDB != nil {
		return
	}

	var err error
	testAuthDB, err = database.NewPostgreSQLDB(dsn)
	if err != nil {
		t.Fatal("Failed to connect to test database: " + err.Error())
	}
}

func newAuthTestService(t *testing.T) auth.AuthService {
	t.Helper()
	authTestInit(t)
	jwtService := jwt.NewJWTService("test-secret-key-for-auth-service", "15m", "168h")
	return NewAuthService(
		testAuthDB,
		postgresql.NewUserRepository(testAuthDB),
		postgresql.NewCompanyRepository(testAuthDB),
		jwtService,
		postgresql.NewJWTRepository(testAuthDB),
	)
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString())
}

var testSession = auth.SessionTrackingRequest{
	UserAgent: "go-test",
	IPAddress: "127.0.0.1",
}

func TestAuthService_Register_BootstrapsTenant(t *testing.T) {
	ctx := context.Background()
	svc := newAuthTestService(t)

	email := uniqueEmail("ada")
	tokens, err := svc.Register(ctx, auth.RegisterRequest{
		CompanyName:     "Acme",
		DefaultCurrency: "USD",
		Name:            "ada",
		Email:           email,
		Password:        "supersecret",
		ConfirmPassword: "supersecret",
	}, testSession)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	// The first user of a company is its admin.
	userRepo := postgresql.NewUserRepository(testAuthDB)
	created, err := userRepo.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, created.Role)
	assert.NotEmpty(t, created.CompanyID)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newAuthTestService(t)

	email := uniqueEmail("ada")
	req := auth.RegisterRequest{
		CompanyName:     "Acme",
		DefaultCurrency: "USD",
		Name:            "ada",
		Email:           email,
		Password:        "supersecret",
		ConfirmPassword: "supersecret",
	}
	_, err := svc.Register(ctx, req, testSession)
	require.NoError(t, err)

	req.CompanyName = "Acme Again"
	_, err = svc.Register(ctx, req, testSession)
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc := newAuthTestService(t)

	email := uniqueEmail("ada")
	_, err := svc.Register(ctx, auth.RegisterRequest{
		CompanyName:     "Acme",
		DefaultCurrency: "USD",
		Name:            "ada",
		Email:           email,
		Password:        "supersecret",
		ConfirmPassword: "supersecret",
	}, testSession)
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, auth.LoginRequest{Email: email, Password: "supersecret"}, testSession)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)

	_, err = svc.Login(ctx, auth.LoginRequest{Email: email, Password: "wrong-password"}, testSession)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, auth.LoginRequest{Email: uniqueEmail("nobody"), Password: "supersecret"}, testSession)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	svc := newAuthTestService(t)

	email := uniqueEmail("ada")
	tokens, err := svc.Register(ctx, auth.RegisterRequest{
		CompanyName:     "Acme",
		DefaultCurrency: "USD",
		Name:            "ada",
		Email:           email,
		Password:        "supersecret",
		ConfirmPassword: "supersecret",
	}, testSession)
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not accepted in place of a refresh token.
	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: tokens.AccessToken})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: "not-a-token"})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_Logout_RevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	svc := newAuthTestService(t)

	email := uniqueEmail("ada")
	tokens, err := svc.Register(ctx, auth.RegisterRequest{
		CompanyName:     "Acme",
		DefaultCurrency: "USD",
		Name:            "ada",
		Email:           email,
		Password:        "supersecret",
		ConfirmPassword: "supersecret",
	}, testSession)
	require.NoError(t, err)

	err = svc.Logout(ctx, tokens.RefreshToken)
	require.NoError(t, err)

	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
}
