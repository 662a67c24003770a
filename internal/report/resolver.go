package report

import (
	"fmt"
	"log/slog"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/catalog"
)

// Maintainer is the directory's view of an External Maintainer account:
// enough to validate a delegation without pulling the whole user.
type Maintainer struct {
	ID              int64
	HasExternalRole bool
	CompanyCategory catalog.Category
}

// UserDirectory answers the staffing questions the report flow needs. It is
// implemented against the user tables directly so the report core does not
// depend on the user package.
type UserDirectory interface {
	HolderIDs(departmentRoleID int64) ([]int64, error)
	GetMaintainer(userID int64) (*Maintainer, error)
	IsDirectorOf(userID, departmentID int64) (bool, error)
}

// CategoryResolverAPI maps a report category to the DepartmentRole
// responsible for it.
type CategoryResolverAPI interface {
	ResolveDepartmentRoleForCategory(category catalog.Category) (*catalog.DepartmentRole, error)
}

// AssignmentResolver picks the staff member a newly approved report goes
// to: the holder of the category's role with the fewest open reports, ties
// broken by lowest user ID.
type AssignmentResolver struct {
	catalog   CategoryResolverAPI
	directory UserDirectory
	workload  WorkloadCounterAPI
	logger    *slog.Logger
}

// WorkloadCounterAPI counts a staff member's open (assigned or in-progress)
// reports.
type WorkloadCounterAPI interface {
	CountOpenByAssignee(userID int64) (int64, error)
}

func NewAssignmentResolver(catalogAPI CategoryResolverAPI, directory UserDirectory, workload WorkloadCounterAPI, logger *slog.Logger) *AssignmentResolver {
	return &AssignmentResolver{
		catalog:   catalogAPI,
		directory: directory,
		workload:  workload,
		logger:    logger,
	}
}

func (r *AssignmentResolver) ResolveDepartmentRole(category catalog.Category) (*catalog.DepartmentRole, error) {
	return r.catalog.ResolveDepartmentRoleForCategory(category)
}

func (r *AssignmentResolver) SelectAssignee(departmentRole *catalog.DepartmentRole) (int64, error) {
	holders, err := r.directory.HolderIDs(departmentRole.ID)
	if err != nil {
		return 0, err
	}
	if len(holders) == 0 {
		r.logger.Error("no staff hold the role for this category",
			"department", departmentRole.DepartmentName, "role", departmentRole.RoleName)
		return 0, internal.NewInternalError(
			fmt.Sprintf("no eligible staff for role %q in department %q",
				departmentRole.RoleName, departmentRole.DepartmentName), nil)
	}

	best := int64(0)
	bestLoad := int64(-1)
	for _, holderID := range holders {
		load, err := r.workload.CountOpenByAssignee(holderID)
		if err != nil {
			return 0, err
		}
		if bestLoad == -1 || load < bestLoad || (load == bestLoad && holderID < best) {
			best = holderID
			bestLoad = load
		}
	}

	r.logger.Debug("assignee selected", "assignee_id", best, "open_reports", bestLoad)
	return best, nil
}
