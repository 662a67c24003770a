package catalog

import (
	"github.com/civiport/report-management/internal/auth"
)

// Category is the closed vocabulary of report categories. Companies are
// scoped to one category, and each category maps to exactly one
// DepartmentRole responsible for handling it.
type Category string

const (
	CategoryPublicLighting    Category = "Public Lighting"
	CategoryRoadsAndSidewalks Category = "Roads and Sidewalks"
	CategoryWasteDisposal     Category = "Waste Disposal"
	CategoryWaterAndSewer     Category = "Water and Sewer"
	CategoryPublicGreenery    Category = "Public Greenery"
)

var AllCategories = []Category{
	CategoryPublicLighting,
	CategoryRoadsAndSidewalks,
	CategoryWasteDisposal,
	CategoryWaterAndSewer,
	CategoryPublicGreenery,
}

func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// OrganizationDepartmentName is the non-operational department that holds
// only the Citizen and Administrator roles. It is excluded from municipality
// department listings.
const OrganizationDepartmentName = "Organization"

type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (d *Department) IsOrganization() bool {
	return d.Name == OrganizationDepartmentName
}

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DepartmentRole is the grantable pairing of a department and a role,
// denormalized with both names for authorization and display.
type DepartmentRole struct {
	ID             int64  `json:"id"`
	DepartmentID   int64  `json:"department_id"`
	RoleID         int64  `json:"role_id"`
	DepartmentName string `json:"department_name"`
	RoleName       string `json:"role_name"`
}

func (dr *DepartmentRole) Role() auth.RoleName {
	return auth.RoleName(dr.RoleName)
}

// IsGrantable reports whether the pair may be granted through the
// municipality-management surface. Citizen and Administrator never are.
func (dr *DepartmentRole) IsGrantable() bool {
	role := dr.Role()
	return role != auth.RoleCitizen && role != auth.RoleAdministrator
}
