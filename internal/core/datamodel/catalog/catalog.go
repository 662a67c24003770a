package catalog

import "time"

type Department struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Department) TableName() string {
	return "departments"
}

type Role struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Role) TableName() string {
	return "roles"
}

// DepartmentRole is the unit of grant: a user is never granted a bare Role,
// only a (department, role) pair.
type DepartmentRole struct {
	ID           int64     `gorm:"primaryKey"`
	DepartmentID int64     `gorm:"column:department_id;not null;uniqueIndex:idx_department_role"`
	RoleID       int64     `gorm:"column:role_id;not null;uniqueIndex:idx_department_role"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (DepartmentRole) TableName() string {
	return "department_roles"
}

type CategoryRoleMapping struct {
	ID               int64     `gorm:"primaryKey"`
	Category         string    `gorm:"column:category;uniqueIndex;not null"`
	DepartmentRoleID int64     `gorm:"column:department_role_id;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CategoryRoleMapping) TableName() string {
	return "category_role_mappings"
}
