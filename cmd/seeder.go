package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/civiport/report-management/internal/auth"
	"github.com/civiport/report-management/internal/catalog"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the reference catalog and sample accounts",
	Long:  `Seed departments, roles, category mappings, companies and sample users for development and testing.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		seedCatalog(db)
		seedCompanies(db)
		seedUsers(db)

		fmt.Println("Seeding complete")
	},
}

// departmentRoles is the full grantable matrix: which roles exist in which
// department. The Organization department anchors Citizen and Administrator.
var departmentRoles = map[string][]auth.RoleName{
	catalog.OrganizationDepartmentName: {auth.RoleCitizen, auth.RoleAdministrator},
	"Public Lighting Department":       {auth.RoleElectricalStaff, auth.RoleDepartmentDirector, auth.RoleExternalMaintainer},
	"Public Infrastructure":            {auth.RoleRoadMaintenanceStaff, auth.RoleDepartmentDirector, auth.RoleExternalMaintainer},
	"Waste Management":                 {auth.RoleSanitationStaff, auth.RoleDepartmentDirector, auth.RoleExternalMaintainer},
	"Water and Sewerage":               {auth.RoleHydraulicStaff, auth.RoleDepartmentDirector, auth.RoleExternalMaintainer},
	"Parks and Greenery":               {auth.RoleGardeningStaff, auth.RoleDepartmentDirector, auth.RoleExternalMaintainer},
	"Public Relations":                 {auth.RolePublicRelationsOfficer},
}

var categoryMappings = map[catalog.Category]struct {
	Department string
	Role       auth.RoleName
}{
	catalog.CategoryPublicLighting:    {"Public Lighting Department", auth.RoleElectricalStaff},
	catalog.CategoryRoadsAndSidewalks: {"Public Infrastructure", auth.RoleRoadMaintenanceStaff},
	catalog.CategoryWasteDisposal:     {"Waste Management", auth.RoleSanitationStaff},
	catalog.CategoryWaterAndSewer:     {"Water and Sewerage", auth.RoleHydraulicStaff},
	catalog.CategoryPublicGreenery:    {"Parks and Greenery", auth.RoleGardeningStaff},
}

func seedCatalog(db *gorm.DB) {
	for _, role := range auth.AllRoleNames {
		ensureRow(db, "roles", "name", string(role),
			"INSERT INTO roles (name) VALUES (?)", string(role))
	}

	for department, roles := range departmentRoles {
		ensureRow(db, "departments", "name", department,
			"INSERT INTO departments (name) VALUES (?)", department)

		for _, role := range roles {
			departmentRoleID := lookupDepartmentRole(db, department, string(role))
			if departmentRoleID != 0 {
				continue
			}
			err := db.Exec(`
				INSERT INTO department_roles (department_id, role_id)
				SELECT d.id, r.id FROM departments d, roles r
				WHERE d.name = ? AND r.name = ?`, department, string(role)).Error
			if err != nil {
				log.Fatalf("failed to insert department role %s/%s: %v", department, role, err)
			}
		}
	}

	for category, mapping := range categoryMappings {
		departmentRoleID := lookupDepartmentRole(db, mapping.Department, string(mapping.Role))
		if departmentRoleID == 0 {
			log.Fatalf("department role %s/%s missing for category %s", mapping.Department, mapping.Role, category)
		}

		var exists int
		row := db.Raw("SELECT 1 FROM category_role_mappings WHERE category = ?", string(category)).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}
		err := db.Exec("INSERT INTO category_role_mappings (category, department_role_id) VALUES (?, ?)",
			string(category), departmentRoleID).Error
		if err != nil {
			log.Fatalf("failed to insert category mapping %s: %v", category, err)
		}
	}

	fmt.Println("Seeded reference catalog")
}

func seedCompanies(db *gorm.DB) {
	companies := map[string]catalog.Category{
		"Lumen Electric S.r.l.":   catalog.CategoryPublicLighting,
		"Asphalt Works Ltd":       catalog.CategoryRoadsAndSidewalks,
		"GreenCare Cooperative":   catalog.CategoryPublicGreenery,
		"AquaFix Services":        catalog.CategoryWaterAndSewer,
		"CleanCity Waste Hauling": catalog.CategoryWasteDisposal,
	}

	for name, category := range companies {
		ensureRow(db, "companies", "name", name,
			"INSERT INTO companies (name, category, created_at, updated_at) VALUES (?, ?, now(), now())",
			name, string(category))
	}

	fmt.Println("Seeded companies")
}

type seedUser struct {
	Username   string
	Email      string
	Department string
	Role       auth.RoleName
	Company    string
}

func seedUsers(db *gorm.DB) {
	password := "password"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	users := []seedUser{
		{"admin", "admin@civiport.local", catalog.OrganizationDepartmentName, auth.RoleAdministrator, ""},
		{"citizen", "citizen@civiport.local", catalog.OrganizationDepartmentName, auth.RoleCitizen, ""},
		{"pro", "pro@civiport.local", "Public Relations", auth.RolePublicRelationsOfficer, ""},
		{"electrician", "electrician@civiport.local", "Public Lighting Department", auth.RoleElectricalStaff, ""},
		{"roadworker", "roadworker@civiport.local", "Public Infrastructure", auth.RoleRoadMaintenanceStaff, ""},
		{"sanitation", "sanitation@civiport.local", "Waste Management", auth.RoleSanitationStaff, ""},
		{"plumber", "plumber@civiport.local", "Water and Sewerage", auth.RoleHydraulicStaff, ""},
		{"gardener", "gardener@civiport.local", "Parks and Greenery", auth.RoleGardeningStaff, ""},
		{"director", "director@civiport.local", "Public Lighting Department", auth.RoleDepartmentDirector, ""},
		{"maintainer", "maintainer@civiport.local", "Public Lighting Department", auth.RoleExternalMaintainer, "Lumen Electric S.r.l."},
	}

	for _, u := range users {
		var exists int
		if err := db.Raw("SELECT 1 FROM users WHERE username = ?", u.Username).Row().Scan(&exists); err == nil {
			continue
		}

		err := db.Exec(`
			INSERT INTO users (username, email, password_hash, first_name, last_name, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, '', true, now(), now())`,
			u.Username, u.Email, string(hash), u.Username).Error
		if err != nil {
			log.Fatalf("failed to insert user %s: %v", u.Username, err)
		}

		var userID int64
		if err := db.Raw("SELECT id FROM users WHERE username = ?", u.Username).Row().Scan(&userID); err != nil {
			log.Fatalf("failed to look up user %s: %v", u.Username, err)
		}

		departmentRoleID := lookupDepartmentRole(db, u.Department, string(u.Role))
		if departmentRoleID == 0 {
			log.Fatalf("department role %s/%s not seeded", u.Department, u.Role)
		}
		err = db.Exec("INSERT INTO user_department_roles (user_id, department_role_id, created_at) VALUES (?, ?, now())",
			userID, departmentRoleID).Error
		if err != nil {
			log.Fatalf("failed to grant role to %s: %v", u.Username, err)
		}

		if u.Company != "" {
			err = db.Exec("UPDATE users SET company_id = (SELECT id FROM companies WHERE name = ?) WHERE id = ?",
				u.Company, userID).Error
			if err != nil {
				log.Fatalf("failed to link company for %s: %v", u.Username, err)
			}
		}

		fmt.Println("Seeded user:", u.Username)
	}
}

func ensureRow(db *gorm.DB, table, column, value string, insertSQL string, args ...interface{}) {
	var exists int
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ?", table, column)
	if err := db.Raw(query, value).Row().Scan(&exists); err == nil {
		return
	}
	if err := db.Exec(insertSQL, args...).Error; err != nil {
		log.Fatalf("failed to insert into %s: %v", table, err)
	}
}

func lookupDepartmentRole(db *gorm.DB, department, role string) int64 {
	var id int64
	row := db.Raw(`
		SELECT dr.id FROM department_roles dr
		JOIN departments d ON d.id = dr.department_id
		JOIN roles r ON r.id = dr.role_id
		WHERE d.name = ? AND r.name = ?`, department, role).Row()
	if err := row.Scan(&id); err != nil {
		return 0
	}
	return id
}
