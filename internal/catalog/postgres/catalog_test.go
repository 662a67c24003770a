package postgres_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/civiport/report-management/internal/catalog"
	catalogPostgres "github.com/civiport/report-management/internal/catalog/postgres"
	catalogDatamodel "github.com/civiport/report-management/internal/core/datamodel/catalog"
)

func TestCatalogPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Catalog Postgres Suite")
}

var _ = Describe("Catalog PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo catalog.RepositoryAPI

		organization *catalogDatamodel.Department
		lighting     *catalogDatamodel.Department

		citizenRole     *catalogDatamodel.Role
		electricianRole *catalogDatamodel.Role
		directorRole    *catalogDatamodel.Role

		lightingElectrician *catalogDatamodel.DepartmentRole
	)

	seedPair := func(dept *catalogDatamodel.Department, role *catalogDatamodel.Role) *catalogDatamodel.DepartmentRole {
		dr := &catalogDatamodel.DepartmentRole{DepartmentID: dept.ID, RoleID: role.ID}
		Expect(db.Create(dr).Error).NotTo(HaveOccurred())
		return dr
	}

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&catalogDatamodel.Department{},
			&catalogDatamodel.Role{},
			&catalogDatamodel.DepartmentRole{},
			&catalogDatamodel.CategoryRoleMapping{},
		)
		Expect(err).NotTo(HaveOccurred())

		organization = &catalogDatamodel.Department{Name: catalog.OrganizationDepartmentName}
		lighting = &catalogDatamodel.Department{Name: "Public Lighting"}
		Expect(db.Create(organization).Error).NotTo(HaveOccurred())
		Expect(db.Create(lighting).Error).NotTo(HaveOccurred())

		citizenRole = &catalogDatamodel.Role{Name: "Citizen"}
		electricianRole = &catalogDatamodel.Role{Name: "Electrical Maintenance Staff"}
		directorRole = &catalogDatamodel.Role{Name: "Department Director"}
		Expect(db.Create(citizenRole).Error).NotTo(HaveOccurred())
		Expect(db.Create(electricianRole).Error).NotTo(HaveOccurred())
		Expect(db.Create(directorRole).Error).NotTo(HaveOccurred())

		seedPair(organization, citizenRole)
		lightingElectrician = seedPair(lighting, electricianRole)
		seedPair(lighting, directorRole)

		repo = catalogPostgres.NewCatalogRepository(db)
	})

	Describe("FindDepartmentRole", func() {
		It("should find a pair by department and role name", func() {
			dr, err := repo.FindDepartmentRole("Public Lighting", "Electrical Maintenance Staff")

			Expect(err).NotTo(HaveOccurred())
			Expect(dr).NotTo(BeNil())
			Expect(dr.ID).To(Equal(lightingElectrician.ID))
			Expect(dr.DepartmentName).To(Equal("Public Lighting"))
			Expect(dr.RoleName).To(Equal("Electrical Maintenance Staff"))
		})

		It("should return nil for a pair that was never granted to the department", func() {
			dr, err := repo.FindDepartmentRole("Public Lighting", "Citizen")

			Expect(err).NotTo(HaveOccurred())
			Expect(dr).To(BeNil())
		})
	})

	Describe("GetDepartmentRoleByID", func() {
		It("should resolve the pair with both names filled in", func() {
			dr, err := repo.GetDepartmentRoleByID(lightingElectrician.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(dr).NotTo(BeNil())
			Expect(dr.DepartmentID).To(Equal(lighting.ID))
			Expect(dr.RoleName).To(Equal("Electrical Maintenance Staff"))
		})

		It("should return nil for an unknown id", func() {
			dr, err := repo.GetDepartmentRoleByID(99999)

			Expect(err).NotTo(HaveOccurred())
			Expect(dr).To(BeNil())
		})
	})

	Describe("GetDepartmentByID", func() {
		It("should return the department", func() {
			dept, err := repo.GetDepartmentByID(lighting.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(dept).NotTo(BeNil())
			Expect(dept.Name).To(Equal("Public Lighting"))
		})

		It("should return nil when the department does not exist", func() {
			dept, err := repo.GetDepartmentByID(99999)

			Expect(err).NotTo(HaveOccurred())
			Expect(dept).To(BeNil())
		})
	})

	Describe("ListDepartments", func() {
		It("should list departments ordered by name", func() {
			departments, err := repo.ListDepartments()

			Expect(err).NotTo(HaveOccurred())
			Expect(departments).To(HaveLen(2))
			Expect(departments[0].Name).To(Equal(catalog.OrganizationDepartmentName))
			Expect(departments[1].Name).To(Equal("Public Lighting"))
		})
	})

	Describe("ListRolesForDepartment", func() {
		It("should list only the roles attached to the department", func() {
			roles, err := repo.ListRolesForDepartment(lighting.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(HaveLen(2))
			Expect(roles[0].Name).To(Equal("Department Director"))
			Expect(roles[1].Name).To(Equal("Electrical Maintenance Staff"))
		})

		It("should return an empty list for a department without roles", func() {
			empty := &catalogDatamodel.Department{Name: "Parks and Gardens"}
			Expect(db.Create(empty).Error).NotTo(HaveOccurred())

			roles, err := repo.ListRolesForDepartment(empty.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(BeEmpty())
		})
	})

	Describe("ListMunicipalityRoleNames", func() {
		It("should exclude roles that only exist in the Organization department", func() {
			names, err := repo.ListMunicipalityRoleNames()

			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(ConsistOf("Electrical Maintenance Staff", "Department Director"))
		})
	})

	Describe("MappingForCategory", func() {
		It("should resolve the responsible pair for a mapped category", func() {
			mapping := &catalogDatamodel.CategoryRoleMapping{
				Category:         string(catalog.CategoryPublicLighting),
				DepartmentRoleID: lightingElectrician.ID,
			}
			Expect(db.Create(mapping).Error).NotTo(HaveOccurred())

			dr, err := repo.MappingForCategory(catalog.CategoryPublicLighting)

			Expect(err).NotTo(HaveOccurred())
			Expect(dr).NotTo(BeNil())
			Expect(dr.ID).To(Equal(lightingElectrician.ID))
			Expect(dr.DepartmentName).To(Equal("Public Lighting"))
		})

		It("should return nil for an unmapped category", func() {
			dr, err := repo.MappingForCategory(catalog.CategoryRoadsAndSidewalks)

			Expect(err).NotTo(HaveOccurred())
			Expect(dr).To(BeNil())
		})
	})
})
