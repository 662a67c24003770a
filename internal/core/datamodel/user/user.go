package user

import "time"

// User is the persistence row for an account. CompanyID is set only for
// External Maintainer accounts.
type User struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    string
	LastName     string
	CompanyID    *int64
	IsActive     bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

// UserDepartmentRole is a role grant. A user holds a role within a
// department; the pair is unique per user.
type UserDepartmentRole struct {
	ID               int64 `gorm:"primaryKey"`
	UserID           int64 `gorm:"uniqueIndex:idx_user_department_role;not null"`
	DepartmentRoleID int64 `gorm:"uniqueIndex:idx_user_department_role;not null"`
	CreatedAt        time.Time
}

func (UserDepartmentRole) TableName() string {
	return "user_department_roles"
}
