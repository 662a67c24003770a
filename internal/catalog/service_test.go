package catalog_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/auth"
	"github.com/civiport/report-management/internal/catalog"
)

func TestCatalog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Catalog Suite")
}

type mockCatalogRepository struct {
	departments     []*catalog.Department
	departmentRoles []*catalog.DepartmentRole
	rolesByDept     map[int64][]*catalog.Role
	roleNames       []string
	mappings        map[catalog.Category]*catalog.DepartmentRole
	listError       error
}

func newMockCatalogRepository() *mockCatalogRepository {
	return &mockCatalogRepository{
		rolesByDept: make(map[int64][]*catalog.Role),
		mappings:    make(map[catalog.Category]*catalog.DepartmentRole),
	}
}

func (m *mockCatalogRepository) FindDepartmentRole(departmentName, roleName string) (*catalog.DepartmentRole, error) {
	for _, dr := range m.departmentRoles {
		if dr.DepartmentName == departmentName && dr.RoleName == roleName {
			return dr, nil
		}
	}
	return nil, nil
}

func (m *mockCatalogRepository) GetDepartmentRoleByID(id int64) (*catalog.DepartmentRole, error) {
	for _, dr := range m.departmentRoles {
		if dr.ID == id {
			return dr, nil
		}
	}
	return nil, nil
}

func (m *mockCatalogRepository) GetDepartmentByID(id int64) (*catalog.Department, error) {
	for _, d := range m.departments {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

func (m *mockCatalogRepository) ListDepartments() ([]*catalog.Department, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return m.departments, nil
}

func (m *mockCatalogRepository) ListRolesForDepartment(departmentID int64) ([]*catalog.Role, error) {
	return m.rolesByDept[departmentID], nil
}

func (m *mockCatalogRepository) ListMunicipalityRoleNames() ([]string, error) {
	return m.roleNames, nil
}

func (m *mockCatalogRepository) MappingForCategory(category catalog.Category) (*catalog.DepartmentRole, error) {
	return m.mappings[category], nil
}

var _ = Describe("CatalogService", func() {
	var (
		service  *catalog.Service
		mockRepo *mockCatalogRepository
	)

	BeforeEach(func() {
		mockRepo = newMockCatalogRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = catalog.NewService(mockRepo, logger)
	})

	Describe("ListMunicipalityDepartments", func() {
		It("should exclude the Organization department", func() {
			mockRepo.departments = []*catalog.Department{
				{ID: 1, Name: catalog.OrganizationDepartmentName},
				{ID: 2, Name: "Public Lighting Department"},
				{ID: 3, Name: "Waste Management"},
			}

			departments, err := service.ListMunicipalityDepartments()

			Expect(err).ToNot(HaveOccurred())
			Expect(departments).To(HaveLen(2))
			for _, d := range departments {
				Expect(d.Name).ToNot(Equal(catalog.OrganizationDepartmentName))
			}
		})

		It("should propagate repository errors", func() {
			mockRepo.listError = errors.New("connection refused")

			_, err := service.ListMunicipalityDepartments()

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListRolesForDepartment", func() {
		It("should return not found for an unknown department", func() {
			_, err := service.ListRolesForDepartment(99)

			Expect(err).To(Equal(internal.ErrDepartmentNotFound))
		})

		It("should list the department's roles", func() {
			mockRepo.departments = []*catalog.Department{{ID: 2, Name: "Waste Management"}}
			mockRepo.rolesByDept[2] = []*catalog.Role{{ID: 5, Name: string(auth.RoleSanitationStaff)}}

			roles, err := service.ListRolesForDepartment(2)

			Expect(err).ToNot(HaveOccurred())
			Expect(roles).To(HaveLen(1))
			Expect(roles[0].Name).To(Equal(string(auth.RoleSanitationStaff)))
		})
	})

	Describe("ListAllMunicipalityRoleNames", func() {
		It("should drop Citizen and Administrator and deduplicate", func() {
			mockRepo.roleNames = []string{
				string(auth.RoleCitizen),
				string(auth.RoleAdministrator),
				string(auth.RoleElectricalStaff),
				string(auth.RoleElectricalStaff),
				string(auth.RoleDepartmentDirector),
			}

			names, err := service.ListAllMunicipalityRoleNames()

			Expect(err).ToNot(HaveOccurred())
			Expect(names).To(ConsistOf(
				string(auth.RoleElectricalStaff),
				string(auth.RoleDepartmentDirector),
			))
		})
	})

	Describe("FindDepartmentRole", func() {
		It("should return not found when the pair does not exist", func() {
			_, err := service.FindDepartmentRole("Waste Management", string(auth.RoleElectricalStaff))

			Expect(err).To(Equal(internal.ErrDepartmentRoleNotFound))
		})
	})

	Describe("ResolveDepartmentRoleForCategory", func() {
		It("should resolve a mapped category", func() {
			mockRepo.mappings[catalog.CategoryPublicLighting] = &catalog.DepartmentRole{
				ID:             4,
				DepartmentName: "Public Lighting Department",
				RoleName:       string(auth.RoleElectricalStaff),
			}

			dr, err := service.ResolveDepartmentRoleForCategory(catalog.CategoryPublicLighting)

			Expect(err).ToNot(HaveOccurred())
			Expect(dr.ID).To(Equal(int64(4)))
		})

		It("should surface a missing mapping as an internal error", func() {
			_, err := service.ResolveDepartmentRoleForCategory(catalog.CategoryWaterAndSewer)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})
})

var _ = Describe("Category", func() {
	It("should accept every known category", func() {
		for _, c := range catalog.AllCategories {
			Expect(c.Valid()).To(BeTrue())
		}
	})

	It("should reject anything else", func() {
		Expect(catalog.Category("Potholes").Valid()).To(BeFalse())
	})
})

var _ = Describe("DepartmentRole", func() {
	It("should never consider Citizen or Administrator grantable", func() {
		citizen := &catalog.DepartmentRole{RoleName: string(auth.RoleCitizen)}
		admin := &catalog.DepartmentRole{RoleName: string(auth.RoleAdministrator)}
		staff := &catalog.DepartmentRole{RoleName: string(auth.RoleHydraulicStaff)}

		Expect(citizen.IsGrantable()).To(BeFalse())
		Expect(admin.IsGrantable()).To(BeFalse())
		Expect(staff.IsGrantable()).To(BeTrue())
	})
})
