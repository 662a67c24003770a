package user

import (
	"log/slog"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/auth"
	"github.com/civiport/report-management/internal/catalog"
	"github.com/civiport/report-management/internal/company"
	userDatamodel "github.com/civiport/report-management/internal/core/datamodel/user"
)

// CompanyChange carries a company link update that must commit in the same
// transaction as the grant mutation it accompanies. A nil *CompanyChange
// leaves the link untouched; a nil CompanyID clears it.
type CompanyChange struct {
	CompanyID *int64
}

// RepositoryAPI is the data access surface for accounts and role grants.
// Every grant mutation runs in one transaction together with its company
// change, so a failed grant never leaves a stray company link; RemoveGrant
// and ReplaceGrants enforce the at-least-one-role rule inside it.
type RepositoryAPI interface {
	CreateWithGrants(row *userDatamodel.User, departmentRoleIDs []int64) (int64, error)
	GetByID(id int64) (*User, error)
	GetByUsername(username string) (*User, error)
	ListMunicipalityUsers() ([]*User, error)
	Update(u *User) error
	Delete(id int64) error
	AddGrant(userID, departmentRoleID int64, company *CompanyChange) error
	RemoveGrant(userID, departmentRoleID int64, company *CompanyChange) error
	ReplaceGrants(userID int64, departmentRoleIDs []int64, companyID *int64) error
}

// CatalogAPI is the slice of the catalog service the user service needs to
// resolve role grants.
type CatalogAPI interface {
	FindDepartmentRole(departmentName, roleName string) (*catalog.DepartmentRole, error)
	GetDepartmentRoleByID(id int64) (*catalog.DepartmentRole, error)
}

// CompanyFinderAPI resolves a company by name when granting the External
// Maintainer role.
type CompanyFinderAPI interface {
	FindByName(name string) (*company.Company, error)
}

type PasswordHasherAPI interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo      RepositoryAPI
	catalog   CatalogAPI
	companies CompanyFinderAPI
	hasher    PasswordHasherAPI
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, catalogAPI CatalogAPI, companies CompanyFinderAPI, hasher PasswordHasherAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalogAPI,
		companies: companies,
		hasher:    hasher,
		logger:    logger,
	}
}

// RegisterCitizen creates a self-service citizen account. The account gets
// exactly one grant: the Citizen role in the Organization department.
func (s *Service) RegisterCitizen(dto RegisterCitizenDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	citizenRole, err := s.catalog.FindDepartmentRole(catalog.OrganizationDepartmentName, string(auth.RoleCitizen))
	if err != nil {
		s.logger.Error("citizen role pair not found", "error", err)
		return nil, internal.NewInternalError("citizen role is not configured", err)
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	row := &userDatamodel.User{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: hash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		IsActive:     true,
	}
	id, err := s.repo.CreateWithGrants(row, []int64{citizenRole.ID})
	if err != nil {
		s.logger.Error("failed to register citizen", "error", err, "username", dto.Username)
		return nil, err
	}

	s.logger.Info("citizen registered", "user_id", id, "username", dto.Username)
	return s.repo.GetByID(id)
}

// CreateMunicipalityUser creates a staff or maintainer account with one or
// more grantable roles. Citizen and Administrator are never grantable here.
func (s *Service) CreateMunicipalityUser(dto CreateMunicipalityUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	grants, err := s.resolveGrants(dto.Roles)
	if err != nil {
		return nil, err
	}

	companyID, err := s.companyForGrants(grants, dto.CompanyName)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	row := &userDatamodel.User{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: hash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		CompanyID:    companyID,
		IsActive:     true,
	}
	id, err := s.repo.CreateWithGrants(row, grantIDs(grants))
	if err != nil {
		s.logger.Error("failed to create municipality user", "error", err, "username", dto.Username)
		return nil, err
	}

	s.logger.Info("municipality user created", "user_id", id, "username", dto.Username)
	return s.repo.GetByID(id)
}

func (s *Service) GetUser(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) ListMunicipalityUsers() ([]*User, error) {
	return s.repo.ListMunicipalityUsers()
}

func (s *Service) UpdateUser(id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if dto.Email != nil {
		u.Email = *dto.Email
	}
	if dto.FirstName != nil {
		u.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		u.LastName = *dto.LastName
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}
	return u, nil
}

func (s *Service) DeleteUser(id int64) error {
	if _, err := s.GetUser(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// AssignRole grants one additional (department, role) pair. Citizen
// accounts stay citizen accounts; they are never promoted in place.
func (s *Service) AssignRole(userID int64, dto AssignRoleDTO) (*User, error) {
	if err := dto.RoleGrantDTO.Validate(); err != nil {
		return nil, err
	}

	target, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if target.IsCitizen() {
		return nil, internal.NewValidationError(
			"Citizen accounts cannot be granted municipality roles",
			internal.ErrCodeCitizenNotPromotable)
	}

	grant, err := s.resolveGrant(dto.RoleGrantDTO)
	if err != nil {
		return nil, err
	}

	var companyChange *CompanyChange
	if grant.Role() == auth.RoleExternalMaintainer {
		companyID, err := s.requireCompany(dto.CompanyName, target)
		if err != nil {
			return nil, err
		}
		companyChange = &CompanyChange{CompanyID: companyID}
	} else if dto.CompanyName != "" {
		return nil, internal.NewValidationError(
			"A company may only be set for the External Maintainer role",
			internal.ErrCodeCompanyNotAllowed)
	}

	if err := s.repo.AddGrant(userID, grant.ID, companyChange); err != nil {
		s.logger.Error("failed to assign role", "error", err,
			"user_id", userID, "department_role_id", grant.ID)
		return nil, err
	}

	s.logger.Info("role assigned", "user_id", userID,
		"department", grant.DepartmentName, "role", grant.RoleName)
	return s.repo.GetByID(userID)
}

// RemoveRole revokes one grant. The last remaining grant can never be
// removed; removing the External Maintainer role clears the company link.
func (s *Service) RemoveRole(userID, departmentRoleID int64) (*User, error) {
	target, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	grant, err := s.catalog.GetDepartmentRoleByID(departmentRoleID)
	if err != nil {
		return nil, err
	}

	var companyChange *CompanyChange
	if grant.Role() == auth.RoleExternalMaintainer && !s.stillMaintainer(target, departmentRoleID) {
		companyChange = &CompanyChange{}
	}

	if err := s.repo.RemoveGrant(userID, departmentRoleID, companyChange); err != nil {
		return nil, err
	}

	s.logger.Info("role removed", "user_id", userID, "department_role_id", departmentRoleID)
	return s.repo.GetByID(userID)
}

// ReplaceAllRoles swaps the full grant set atomically. The new set must be
// non-empty and contain only grantable pairs.
func (s *Service) ReplaceAllRoles(userID int64, dto ReplaceRolesDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	target, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if target.IsCitizen() {
		return nil, internal.NewValidationError(
			"Citizen accounts cannot be granted municipality roles",
			internal.ErrCodeCitizenNotPromotable)
	}

	grants, err := s.resolveGrants(dto.Roles)
	if err != nil {
		return nil, err
	}

	companyID, err := s.companyForGrants(grants, dto.CompanyName)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceGrants(userID, grantIDs(grants), companyID); err != nil {
		s.logger.Error("failed to replace roles", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("roles replaced", "user_id", userID, "role_count", len(grants))
	return s.repo.GetByID(userID)
}

func (s *Service) resolveGrant(dto RoleGrantDTO) (*catalog.DepartmentRole, error) {
	var grant *catalog.DepartmentRole
	var err error
	if dto.DepartmentRoleID != 0 {
		grant, err = s.catalog.GetDepartmentRoleByID(dto.DepartmentRoleID)
	} else {
		grant, err = s.catalog.FindDepartmentRole(dto.DepartmentName, dto.RoleName)
	}
	if err != nil {
		return nil, err
	}
	if !grant.IsGrantable() {
		return nil, internal.ErrRoleNotGrantable
	}
	return grant, nil
}

// resolveGrants resolves a full role list. An unknown entry is the caller's
// mistake, not a missing resource, so it surfaces as a validation error.
func (s *Service) resolveGrants(dtos []RoleGrantDTO) ([]*catalog.DepartmentRole, error) {
	seen := make(map[int64]bool, len(dtos))
	grants := make([]*catalog.DepartmentRole, 0, len(dtos))
	for _, dto := range dtos {
		grant, err := s.resolveGrant(dto)
		if err != nil {
			if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeNotFound {
				return nil, internal.NewValidationError(
					"Unknown department role in role list",
					internal.ErrCodeDepartmentRoleNotFound)
			}
			return nil, err
		}
		if seen[grant.ID] {
			continue
		}
		seen[grant.ID] = true
		grants = append(grants, grant)
	}
	return grants, nil
}

// companyForGrants enforces the maintainer/company coupling: the External
// Maintainer role requires a company, every other role forbids one.
func (s *Service) companyForGrants(grants []*catalog.DepartmentRole, companyName string) (*int64, error) {
	maintainer := false
	for _, grant := range grants {
		if grant.Role() == auth.RoleExternalMaintainer {
			maintainer = true
			break
		}
	}

	if !maintainer {
		if companyName != "" {
			return nil, internal.NewValidationError(
				"A company may only be set for the External Maintainer role",
				internal.ErrCodeCompanyNotAllowed)
		}
		return nil, nil
	}

	if companyName == "" {
		return nil, internal.NewValidationError(
			"The External Maintainer role requires a company",
			internal.ErrCodeCompanyRequired)
	}

	c, err := s.companies.FindByName(companyName)
	if err != nil {
		return nil, err
	}
	return &c.ID, nil
}

func (s *Service) requireCompany(companyName string, target *User) (*int64, error) {
	if companyName == "" {
		if target.CompanyID != nil {
			return target.CompanyID, nil
		}
		return nil, internal.NewValidationError(
			"The External Maintainer role requires a company",
			internal.ErrCodeCompanyRequired)
	}
	c, err := s.companies.FindByName(companyName)
	if err != nil {
		return nil, err
	}
	return &c.ID, nil
}

// stillMaintainer reports whether the user holds the External Maintainer
// role through any grant other than the one being removed.
func (s *Service) stillMaintainer(target *User, removedGrantID int64) bool {
	for _, dr := range target.Roles {
		if dr.ID != removedGrantID && dr.Role() == auth.RoleExternalMaintainer {
			return true
		}
	}
	return false
}

func grantIDs(grants []*catalog.DepartmentRole) []int64 {
	ids := make([]int64, len(grants))
	for i, grant := range grants {
		ids[i] = grant.ID
	}
	return ids
}
