package postgres

import (
	"gorm.io/gorm"

	"github.com/civiport/report-management/internal/auth"
	"github.com/civiport/report-management/internal/catalog"
	"github.com/civiport/report-management/internal/report"
)

// UserDirectory answers the staffing queries the report flow needs by
// reading the user tables directly.
type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) report.UserDirectory {
	return &UserDirectory{db: db}
}

// HolderIDs lists the active users granted a department role, ordered by ID
// so tie-breaks in assignee selection are stable.
func (d *UserDirectory) HolderIDs(departmentRoleID int64) ([]int64, error) {
	var ids []int64
	err := d.db.Raw(`
		SELECT u.id
		FROM users u
		JOIN user_department_roles udr ON udr.user_id = u.id
		WHERE udr.department_role_id = ? AND u.is_active
		ORDER BY u.id ASC`, departmentRoleID).Scan(&ids).Error
	return ids, err
}

func (d *UserDirectory) GetMaintainer(userID int64) (*report.Maintainer, error) {
	var row struct {
		ID              int64
		HasExternalRole bool
		CompanyCategory string
	}
	err := d.db.Raw(`
		SELECT u.id,
			EXISTS (
				SELECT 1
				FROM user_department_roles udr
				JOIN department_roles dr ON dr.id = udr.department_role_id
				JOIN roles r ON r.id = dr.role_id
				WHERE udr.user_id = u.id AND r.name = ?
			) AS has_external_role,
			COALESCE(c.category, '') AS company_category
		FROM users u
		LEFT JOIN companies c ON c.id = u.company_id
		WHERE u.id = ? AND u.is_active`,
		string(auth.RoleExternalMaintainer), userID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &report.Maintainer{
		ID:              row.ID,
		HasExternalRole: row.HasExternalRole,
		CompanyCategory: catalog.Category(row.CompanyCategory),
	}, nil
}

func (d *UserDirectory) IsDirectorOf(userID, departmentID int64) (bool, error) {
	var count int64
	err := d.db.Raw(`
		SELECT COUNT(*)
		FROM user_department_roles udr
		JOIN department_roles dr ON dr.id = udr.department_role_id
		JOIN roles r ON r.id = dr.role_id
		WHERE udr.user_id = ? AND dr.department_id = ? AND r.name = ?`,
		userID, departmentID, string(auth.RoleDepartmentDirector)).Scan(&count).Error
	return count > 0, err
}
