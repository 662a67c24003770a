package user

import (
	"strings"

	"github.com/civiport/report-management/internal"
)

type RegisterCitizenDTO struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (dto *RegisterCitizenDTO) Validate() error {
	dto.Username = strings.TrimSpace(dto.Username)
	dto.Email = strings.TrimSpace(dto.Email)
	if dto.Username == "" {
		return internal.NewValidationError("username is required", internal.ErrCodeValidationFailed)
	}
	if dto.Email == "" || !strings.Contains(dto.Email, "@") {
		return internal.NewValidationError("a valid email is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Password) < 8 {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

// RoleGrantDTO identifies one (department, role) pair either by its ID or by
// the two names.
type RoleGrantDTO struct {
	DepartmentRoleID int64  `json:"department_role_id,omitempty"`
	DepartmentName   string `json:"department_name,omitempty"`
	RoleName         string `json:"role_name,omitempty"`
}

func (dto *RoleGrantDTO) Validate() error {
	if dto.DepartmentRoleID == 0 && (dto.DepartmentName == "" || dto.RoleName == "") {
		return internal.NewValidationError(
			"either department_role_id or department_name and role_name are required",
			internal.ErrCodeValidationFailed)
	}
	return nil
}

type CreateMunicipalityUserDTO struct {
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	Password    string         `json:"password"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Roles       []RoleGrantDTO `json:"roles"`
	CompanyName string         `json:"company_name,omitempty"`
}

func (dto *CreateMunicipalityUserDTO) Validate() error {
	dto.Username = strings.TrimSpace(dto.Username)
	dto.Email = strings.TrimSpace(dto.Email)
	if dto.Username == "" {
		return internal.NewValidationError("username is required", internal.ErrCodeValidationFailed)
	}
	if dto.Email == "" || !strings.Contains(dto.Email, "@") {
		return internal.NewValidationError("a valid email is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Password) < 8 {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	if len(dto.Roles) == 0 {
		return internal.NewValidationError("at least one role is required", internal.ErrCodeEmptyRoleList)
	}
	for i := range dto.Roles {
		if err := dto.Roles[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

type UpdateUserDTO struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

func (dto *UpdateUserDTO) Validate() error {
	if dto.Email != nil {
		trimmed := strings.TrimSpace(*dto.Email)
		if trimmed == "" || !strings.Contains(trimmed, "@") {
			return internal.NewValidationError("a valid email is required", internal.ErrCodeValidationFailed)
		}
		dto.Email = &trimmed
	}
	return nil
}

type AssignRoleDTO struct {
	RoleGrantDTO
	CompanyName string `json:"company_name,omitempty"`
}

type ReplaceRolesDTO struct {
	Roles       []RoleGrantDTO `json:"roles"`
	CompanyName string         `json:"company_name,omitempty"`
}

func (dto *ReplaceRolesDTO) Validate() error {
	if len(dto.Roles) == 0 {
		return internal.NewValidationError("role list cannot be empty", internal.ErrCodeEmptyRoleList)
	}
	for i := range dto.Roles {
		if err := dto.Roles[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
