package catalog

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/auth"
)

// RepositoryAPI is the data access surface for the reference catalog.
// Lookups return nil (not an error) when the row is absent.
type RepositoryAPI interface {
	FindDepartmentRole(departmentName, roleName string) (*DepartmentRole, error)
	GetDepartmentRoleByID(id int64) (*DepartmentRole, error)
	GetDepartmentByID(id int64) (*Department, error)
	ListDepartments() ([]*Department, error)
	ListRolesForDepartment(departmentID int64) ([]*Role, error)
	ListMunicipalityRoleNames() ([]string, error)
	MappingForCategory(category Category) (*DepartmentRole, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) FindDepartmentRole(departmentName, roleName string) (*DepartmentRole, error) {
	dr, err := s.repo.FindDepartmentRole(departmentName, roleName)
	if err != nil {
		s.logger.Error("failed to look up department role", "error", err,
			"department", departmentName, "role", roleName)
		return nil, err
	}
	if dr == nil {
		return nil, internal.ErrDepartmentRoleNotFound
	}
	return dr, nil
}

func (s *Service) GetDepartmentRoleByID(id int64) (*DepartmentRole, error) {
	dr, err := s.repo.GetDepartmentRoleByID(id)
	if err != nil {
		s.logger.Error("failed to look up department role", "error", err, "department_role_id", id)
		return nil, err
	}
	if dr == nil {
		return nil, internal.ErrDepartmentRoleNotFound
	}
	return dr, nil
}

// ListMunicipalityDepartments lists every operational department. The
// Organization department only exists to anchor Citizen and Administrator
// grants and is never listed.
func (s *Service) ListMunicipalityDepartments() ([]*Department, error) {
	departments, err := s.repo.ListDepartments()
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, err
	}

	municipal := make([]*Department, 0, len(departments))
	for _, d := range departments {
		if !d.IsOrganization() {
			municipal = append(municipal, d)
		}
	}
	return municipal, nil
}

func (s *Service) ListRolesForDepartment(departmentID int64) ([]*Role, error) {
	department, err := s.repo.GetDepartmentByID(departmentID)
	if err != nil {
		s.logger.Error("failed to look up department", "error", err, "department_id", departmentID)
		return nil, err
	}
	if department == nil {
		return nil, internal.ErrDepartmentNotFound
	}

	return s.repo.ListRolesForDepartment(departmentID)
}

// ListAllMunicipalityRoleNames returns the distinct role names grantable to
// municipality staff, excluding Citizen and Administrator.
func (s *Service) ListAllMunicipalityRoleNames() ([]string, error) {
	names, err := s.repo.ListMunicipalityRoleNames()
	if err != nil {
		s.logger.Error("failed to list role names", "error", err)
		return nil, err
	}

	seen := make(map[string]bool, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		role := auth.RoleName(name)
		if role == auth.RoleCitizen || role == auth.RoleAdministrator {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, name)
	}
	sort.Strings(result)
	return result, nil
}

// ResolveDepartmentRoleForCategory returns the DepartmentRole responsible for
// a category. A missing mapping is a configuration error, not user input.
func (s *Service) ResolveDepartmentRoleForCategory(category Category) (*DepartmentRole, error) {
	dr, err := s.repo.MappingForCategory(category)
	if err != nil {
		s.logger.Error("failed to resolve category mapping", "error", err, "category", category)
		return nil, err
	}
	if dr == nil {
		s.logger.Error("no department role mapped for category", "category", category)
		return nil, internal.NewInternalError(
			fmt.Sprintf("no department role mapped for category %q", category), nil)
	}
	return dr, nil
}
