package user

import (
	"time"

	"github.com/civiport/report-management/internal/auth"
	"github.com/civiport/report-management/internal/catalog"
)

// User is the domain view of an account: the persistence row joined with
// its role grants and, for maintainers, the company name.
type User struct {
	ID          int64                    `json:"id"`
	Username    string                   `json:"username"`
	Email       string                   `json:"email"`
	FirstName   string                   `json:"first_name"`
	LastName    string                   `json:"last_name"`
	IsActive    bool                     `json:"is_active"`
	CompanyID   *int64                   `json:"company_id,omitempty"`
	CompanyName string                   `json:"company_name,omitempty"`
	Roles       []catalog.DepartmentRole `json:"roles"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

func (u *User) HasRole(role auth.RoleName) bool {
	for _, dr := range u.Roles {
		if dr.Role() == role {
			return true
		}
	}
	return false
}

func (u *User) IsCitizen() bool {
	return u.HasRole(auth.RoleCitizen)
}

func (u *User) IsExternalMaintainer() bool {
	return u.HasRole(auth.RoleExternalMaintainer)
}

// RoleNames flattens the grants to the distinct role names the guard
// reasons over.
func (u *User) RoleNames() []auth.RoleName {
	seen := make(map[auth.RoleName]bool, len(u.Roles))
	names := make([]auth.RoleName, 0, len(u.Roles))
	for _, dr := range u.Roles {
		role := dr.Role()
		if seen[role] {
			continue
		}
		seen[role] = true
		names = append(names, role)
	}
	return names
}
