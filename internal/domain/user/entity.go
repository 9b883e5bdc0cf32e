package user

import "time"

type Role string

const (
	RoleEmployee Role = "employee" // Submits expenses
	RoleManager  Role = "manager"  // Approves expenses of direct reports
	RoleAdmin    Role = "admin"    // Company administration, override access
)

type User struct {
	ID              string
	CompanyID       string
	Email           string
	Name            string
	PasswordHash    *string
	Role            Role
	ManagerID       *string
	OAuthProvider   *string
	OAuthProviderID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAdmin checks if user is a company admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsManager checks if user is manager or admin
func (u *User) IsManager() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}

// CanBeManager checks if user may be assigned as somebody's manager
func (u *User) CanBeManager() bool {
	return u.IsManager()
}
