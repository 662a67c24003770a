package postgres

import (
	"gorm.io/gorm"

	"github.com/civiport/report-management/internal/catalog"
	catalogDatamodel "github.com/civiport/report-management/internal/core/datamodel/catalog"
)

// CatalogRepository implements catalog.RepositoryAPI using GORM.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalog.RepositoryAPI {
	return &CatalogRepository{db: db}
}

const departmentRoleSelect = `
SELECT dr.id, dr.department_id, dr.role_id, d.name AS department_name, r.name AS role_name
FROM department_roles dr
JOIN departments d ON d.id = dr.department_id
JOIN roles r ON r.id = dr.role_id`

func (repo *CatalogRepository) FindDepartmentRole(departmentName, roleName string) (*catalog.DepartmentRole, error) {
	var dr catalog.DepartmentRole
	err := repo.db.Raw(departmentRoleSelect+` WHERE d.name = ? AND r.name = ?`, departmentName, roleName).
		Scan(&dr).Error
	if err != nil {
		return nil, err
	}
	if dr.ID == 0 {
		return nil, nil
	}
	return &dr, nil
}

func (repo *CatalogRepository) GetDepartmentRoleByID(id int64) (*catalog.DepartmentRole, error) {
	var dr catalog.DepartmentRole
	err := repo.db.Raw(departmentRoleSelect+` WHERE dr.id = ?`, id).Scan(&dr).Error
	if err != nil {
		return nil, err
	}
	if dr.ID == 0 {
		return nil, nil
	}
	return &dr, nil
}

func (repo *CatalogRepository) GetDepartmentByID(id int64) (*catalog.Department, error) {
	var row catalogDatamodel.Department
	err := repo.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &catalog.Department{ID: row.ID, Name: row.Name}, nil
}

func (repo *CatalogRepository) ListDepartments() ([]*catalog.Department, error) {
	var rows []catalogDatamodel.Department
	if err := repo.db.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	departments := make([]*catalog.Department, len(rows))
	for i, row := range rows {
		departments[i] = &catalog.Department{ID: row.ID, Name: row.Name}
	}
	return departments, nil
}

func (repo *CatalogRepository) ListRolesForDepartment(departmentID int64) ([]*catalog.Role, error) {
	var roles []*catalog.Role
	err := repo.db.Raw(`
		SELECT r.id, r.name
		FROM roles r
		JOIN department_roles dr ON dr.role_id = r.id
		WHERE dr.department_id = ?
		ORDER BY r.name ASC`, departmentID).Scan(&roles).Error
	return roles, err
}

func (repo *CatalogRepository) ListMunicipalityRoleNames() ([]string, error) {
	var names []string
	err := repo.db.Raw(`
		SELECT DISTINCT r.name
		FROM roles r
		JOIN department_roles dr ON dr.role_id = r.id
		JOIN departments d ON d.id = dr.department_id
		WHERE d.name <> ?`, catalog.OrganizationDepartmentName).Scan(&names).Error
	return names, err
}

func (repo *CatalogRepository) MappingForCategory(category catalog.Category) (*catalog.DepartmentRole, error) {
	var dr catalog.DepartmentRole
	err := repo.db.Raw(departmentRoleSelect+`
		JOIN category_role_mappings m ON m.department_role_id = dr.id
		WHERE m.category = ?`, string(category)).Scan(&dr).Error
	if err != nil {
		return nil, err
	}
	if dr.ID == 0 {
		return nil, nil
	}
	return &dr, nil
}
