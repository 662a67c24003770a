package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/auth"
	"github.com/civiport/report-management/internal/catalog"
	userDatamodel "github.com/civiport/report-management/internal/core/datamodel/user"
	"github.com/civiport/report-management/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (repo *UserRepository) CreateWithGrants(row *userDatamodel.User, departmentRoleIDs []int64) (int64, error) {
	err := repo.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return translateError(err)
		}
		for _, drID := range departmentRoleIDs {
			grant := userDatamodel.UserDepartmentRole{
				UserID:           row.ID,
				DepartmentRoleID: drID,
			}
			if err := tx.Create(&grant).Error; err != nil {
				return translateError(err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (repo *UserRepository) GetByID(id int64) (*user.User, error) {
	return repo.getOne("u.id = ?", id)
}

func (repo *UserRepository) GetByUsername(username string) (*user.User, error) {
	return repo.getOne("u.username = ?", username)
}

func (repo *UserRepository) getOne(condition string, value interface{}) (*user.User, error) {
	var row struct {
		userDatamodel.User
		CompanyName string
	}
	err := repo.db.Raw(`
		SELECT u.*, COALESCE(c.name, '') AS company_name
		FROM users u
		LEFT JOIN companies c ON c.id = u.company_id
		WHERE `+condition, value).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}

	u := toDomain(&row.User, row.CompanyName)
	roles, err := repo.loadGrants(u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return u, nil
}

// ListMunicipalityUsers returns every account holding at least one role
// other than Citizen. Plain citizen accounts are not staff and never show
// up in the management listing.
func (repo *UserRepository) ListMunicipalityUsers() ([]*user.User, error) {
	var rows []struct {
		userDatamodel.User
		CompanyName string
	}
	err := repo.db.Raw(`
		SELECT DISTINCT u.*, COALESCE(c.name, '') AS company_name
		FROM users u
		LEFT JOIN companies c ON c.id = u.company_id
		JOIN user_department_roles udr ON udr.user_id = u.id
		JOIN department_roles dr ON dr.id = udr.department_role_id
		JOIN roles r ON r.id = dr.role_id
		WHERE r.name <> ?
		ORDER BY u.username ASC`, string(auth.RoleCitizen)).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	users := make([]*user.User, len(rows))
	for i := range rows {
		u := toDomain(&rows[i].User, rows[i].CompanyName)
		roles, err := repo.loadGrants(u.ID)
		if err != nil {
			return nil, err
		}
		u.Roles = roles
		users[i] = u
	}
	return users, nil
}

func (repo *UserRepository) Update(u *user.User) error {
	return repo.db.Model(&userDatamodel.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"email":      u.Email,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"is_active":  u.IsActive,
		}).Error
}

func (repo *UserRepository) Delete(id int64) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&userDatamodel.UserDepartmentRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&userDatamodel.User{}, id).Error
	})
}

// AddGrant inserts one grant and applies the accompanying company change in
// the same transaction, so a rejected grant never alters the company link.
func (repo *UserRepository) AddGrant(userID, departmentRoleID int64, company *user.CompanyChange) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		grant := userDatamodel.UserDepartmentRole{
			UserID:           userID,
			DepartmentRoleID: departmentRoleID,
		}
		if err := tx.Create(&grant).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return internal.NewConflictError("User already holds this role", internal.ErrCodeRoleAlreadyHeld)
			}
			return err
		}
		return setCompany(tx, userID, company)
	})
}

// RemoveGrant deletes one grant inside a transaction and aborts if it was
// the user's last one, so concurrent removals cannot strip the account bare.
// A company change rides the same transaction.
func (repo *UserRepository) RemoveGrant(userID, departmentRoleID int64, company *user.CompanyChange) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND department_role_id = ?", userID, departmentRoleID).
			Delete(&userDatamodel.UserDepartmentRole{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrRoleNotHeld
		}

		var remaining int64
		if err := tx.Model(&userDatamodel.UserDepartmentRole{}).
			Where("user_id = ?", userID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			return internal.ErrLastRole
		}
		return setCompany(tx, userID, company)
	})
}

func (repo *UserRepository) ReplaceGrants(userID int64, departmentRoleIDs []int64, companyID *int64) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&userDatamodel.UserDepartmentRole{}).Error; err != nil {
			return err
		}
		for _, drID := range departmentRoleIDs {
			grant := userDatamodel.UserDepartmentRole{
				UserID:           userID,
				DepartmentRoleID: drID,
			}
			if err := tx.Create(&grant).Error; err != nil {
				return err
			}
		}
		return setCompany(tx, userID, &user.CompanyChange{CompanyID: companyID})
	})
}

func setCompany(tx *gorm.DB, userID int64, company *user.CompanyChange) error {
	if company == nil {
		return nil
	}
	return tx.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("company_id", company.CompanyID).Error
}

func (repo *UserRepository) loadGrants(userID int64) ([]catalog.DepartmentRole, error) {
	var roles []catalog.DepartmentRole
	err := repo.db.Raw(`
		SELECT dr.id, dr.department_id, dr.role_id, d.name AS department_name, r.name AS role_name
		FROM user_department_roles udr
		JOIN department_roles dr ON dr.id = udr.department_role_id
		JOIN departments d ON d.id = dr.department_id
		JOIN roles r ON r.id = dr.role_id
		WHERE udr.user_id = ?
		ORDER BY d.name, r.name`, userID).Scan(&roles).Error
	return roles, err
}

func toDomain(row *userDatamodel.User, companyName string) *user.User {
	return &user.User{
		ID:          row.ID,
		Username:    row.Username,
		Email:       row.Email,
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		IsActive:    row.IsActive,
		CompanyID:   row.CompanyID,
		CompanyName: companyName,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return internal.ErrDuplicateUser
	}
	return err
}
