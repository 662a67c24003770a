package postgres

import (
	"database/sql"

	"gorm.io/gorm"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/auth"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCredentialsByUsername(username string) (string, int64, error) {
	var passwordHash string
	var userID int64
	query := `SELECT id, password_hash FROM users WHERE username = ? AND is_active = true`

	row := r.db.Raw(query, username).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, internal.ErrUserNotFound
		}
		return "", 0, err
	}
	return passwordHash, userID, nil
}

// GetPrincipal loads the user together with the names of every role granted
// through the user_department_roles join table.
func (r *Repository) GetPrincipal(userID int64) (*auth.Principal, error) {
	principal := &auth.Principal{ID: userID}

	query := `SELECT username FROM users WHERE id = ? AND is_active = true`
	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&principal.Username); err != nil {
		if err == sql.ErrNoRows {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	roleQuery := `SELECT DISTINCT ro.name
	              FROM roles ro
	              JOIN department_roles dr ON dr.role_id = ro.id
	              JOIN user_department_roles udr ON udr.department_role_id = dr.id
	              WHERE udr.user_id = ?`

	rows, err := r.db.Raw(roleQuery, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		principal.Roles = append(principal.Roles, auth.RoleName(name))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return principal, nil
}
