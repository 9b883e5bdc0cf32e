package http

import (
	"net/http"

	"github.com/expensahq/expensa-backend-go/internal/domain/auth"
	"github.com/expensahq/expensa-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
)

// actorFromRequest reconstructs the acting user from the verified JWT claims.
// Only identity fields are populated; handlers that need more load the user
// through the service layer.
func actorFromRequest(r *http.Request) (user.User, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return user.User{}, auth.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.User{}, auth.ErrInvalidToken
	}
	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return user.User{}, auth.ErrInvalidToken
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return user.User{}, auth.ErrInvalidToken
	}

	return user.User{
		ID:        userID,
		CompanyID: companyID,
		Role:      user.Role(role),
	}, nil
}
