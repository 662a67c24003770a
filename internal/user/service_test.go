package user_test

import (
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/auth"
	"github.com/civiport/report-management/internal/catalog"
	"github.com/civiport/report-management/internal/company"
	userDatamodel "github.com/civiport/report-management/internal/core/datamodel/user"
	"github.com/civiport/report-management/internal/user"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

type mockUserRepository struct {
	users        map[int64]*user.User
	grants       map[int64][]int64
	companies    map[int64]*int64
	nextID       int64
	addErr       error
	removeErr    error
	lastReplaced []int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:     make(map[int64]*user.User),
		grants:    make(map[int64][]int64),
		companies: make(map[int64]*int64),
		nextID:    1,
	}
}

func (m *mockUserRepository) CreateWithGrants(row *userDatamodel.User, departmentRoleIDs []int64) (int64, error) {
	id := m.nextID
	m.nextID++
	m.users[id] = &user.User{
		ID:        id,
		Username:  row.Username,
		Email:     row.Email,
		IsActive:  row.IsActive,
		CompanyID: row.CompanyID,
	}
	m.grants[id] = departmentRoleIDs
	return id, nil
}

func (m *mockUserRepository) GetByID(id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *mockUserRepository) GetByUsername(username string) (*user.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) ListMunicipalityUsers() ([]*user.User, error) {
	users := make([]*user.User, 0, len(m.users))
	for _, u := range m.users {
		if !u.IsCitizen() {
			users = append(users, u)
		}
	}
	return users, nil
}

func (m *mockUserRepository) Update(u *user.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) Delete(id int64) error {
	delete(m.users, id)
	delete(m.grants, id)
	return nil
}

func (m *mockUserRepository) AddGrant(userID, departmentRoleID int64, company *user.CompanyChange) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.grants[userID] = append(m.grants[userID], departmentRoleID)
	m.applyCompany(userID, company)
	return nil
}

func (m *mockUserRepository) RemoveGrant(userID, departmentRoleID int64, company *user.CompanyChange) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	grants := m.grants[userID]
	for i, id := range grants {
		if id == departmentRoleID {
			if len(grants) == 1 {
				return internal.ErrLastRole
			}
			m.grants[userID] = append(grants[:i], grants[i+1:]...)
			m.applyCompany(userID, company)
			return nil
		}
	}
	return internal.ErrRoleNotHeld
}

func (m *mockUserRepository) ReplaceGrants(userID int64, departmentRoleIDs []int64, companyID *int64) error {
	m.grants[userID] = departmentRoleIDs
	m.lastReplaced = departmentRoleIDs
	m.applyCompany(userID, &user.CompanyChange{CompanyID: companyID})
	return nil
}

// applyCompany mirrors the repository contract: the company link changes
// only when the grant mutation itself succeeded.
func (m *mockUserRepository) applyCompany(userID int64, company *user.CompanyChange) {
	if company == nil {
		return
	}
	m.companies[userID] = company.CompanyID
	if u, ok := m.users[userID]; ok {
		u.CompanyID = company.CompanyID
	}
}

type mockCatalogAPI struct {
	departmentRoles map[int64]*catalog.DepartmentRole
}

func newMockCatalogAPI() *mockCatalogAPI {
	return &mockCatalogAPI{departmentRoles: make(map[int64]*catalog.DepartmentRole)}
}

func (m *mockCatalogAPI) add(id int64, department string, role auth.RoleName) *catalog.DepartmentRole {
	dr := &catalog.DepartmentRole{ID: id, DepartmentName: department, RoleName: string(role)}
	m.departmentRoles[id] = dr
	return dr
}

func (m *mockCatalogAPI) FindDepartmentRole(departmentName, roleName string) (*catalog.DepartmentRole, error) {
	for _, dr := range m.departmentRoles {
		if dr.DepartmentName == departmentName && dr.RoleName == roleName {
			return dr, nil
		}
	}
	return nil, internal.ErrDepartmentRoleNotFound
}

func (m *mockCatalogAPI) GetDepartmentRoleByID(id int64) (*catalog.DepartmentRole, error) {
	dr, ok := m.departmentRoles[id]
	if !ok {
		return nil, internal.ErrDepartmentRoleNotFound
	}
	return dr, nil
}

type mockCompanyFinder struct {
	companies map[string]*company.Company
}

func newMockCompanyFinder() *mockCompanyFinder {
	return &mockCompanyFinder{companies: make(map[string]*company.Company)}
}

func (m *mockCompanyFinder) FindByName(name string) (*company.Company, error) {
	c, ok := m.companies[name]
	if !ok {
		return nil, internal.ErrCompanyNotFound
	}
	return c, nil
}

type mockHasher struct{}

func (mockHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

var _ = Describe("UserService", func() {
	var (
		service     *user.Service
		mockRepo    *mockUserRepository
		mockCatalog *mockCatalogAPI
		mockFinder  *mockCompanyFinder
	)

	citizenGrantID := int64(1)
	electricianGrantID := int64(2)
	maintainerGrantID := int64(3)
	directorGrantID := int64(4)
	adminGrantID := int64(5)

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		mockCatalog = newMockCatalogAPI()
		mockFinder = newMockCompanyFinder()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(mockRepo, mockCatalog, mockFinder, mockHasher{}, logger)

		mockCatalog.add(citizenGrantID, catalog.OrganizationDepartmentName, auth.RoleCitizen)
		mockCatalog.add(electricianGrantID, "Public Lighting Department", auth.RoleElectricalStaff)
		mockCatalog.add(maintainerGrantID, "Public Lighting Department", auth.RoleExternalMaintainer)
		mockCatalog.add(directorGrantID, "Public Lighting Department", auth.RoleDepartmentDirector)
		mockCatalog.add(adminGrantID, catalog.OrganizationDepartmentName, auth.RoleAdministrator)

		mockFinder.companies["Lumen Electric S.r.l."] = &company.Company{
			ID:       10,
			Name:     "Lumen Electric S.r.l.",
			Category: catalog.CategoryPublicLighting,
		}
	})

	staffRoles := func(ids ...int64) []catalog.DepartmentRole {
		roles := make([]catalog.DepartmentRole, 0, len(ids))
		for _, id := range ids {
			roles = append(roles, *mockCatalog.departmentRoles[id])
		}
		return roles
	}

	Describe("RegisterCitizen", func() {
		It("should create an account holding exactly the Citizen role", func() {
			created, err := service.RegisterCitizen(user.RegisterCitizenDTO{
				Username: "mario",
				Email:    "mario@example.com",
				Password: "supersecret",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.grants[created.ID]).To(Equal([]int64{citizenGrantID}))
		})

		It("should reject a short password", func() {
			_, err := service.RegisterCitizen(user.RegisterCitizenDTO{
				Username: "mario",
				Email:    "mario@example.com",
				Password: "short",
			})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("CreateMunicipalityUser", func() {
		It("should refuse to grant the Citizen role", func() {
			_, err := service.CreateMunicipalityUser(user.CreateMunicipalityUserDTO{
				Username: "sneaky",
				Email:    "sneaky@example.com",
				Password: "supersecret",
				Roles:    []user.RoleGrantDTO{{DepartmentRoleID: citizenGrantID}},
			})

			Expect(err).To(Equal(internal.ErrRoleNotGrantable))
		})

		It("should refuse to grant the Administrator role", func() {
			_, err := service.CreateMunicipalityUser(user.CreateMunicipalityUserDTO{
				Username: "sneaky",
				Email:    "sneaky@example.com",
				Password: "supersecret",
				Roles:    []user.RoleGrantDTO{{DepartmentRoleID: adminGrantID}},
			})

			Expect(err).To(Equal(internal.ErrRoleNotGrantable))
		})

		It("should require a company for an External Maintainer", func() {
			_, err := service.CreateMunicipalityUser(user.CreateMunicipalityUserDTO{
				Username: "fixer",
				Email:    "fixer@example.com",
				Password: "supersecret",
				Roles:    []user.RoleGrantDTO{{DepartmentRoleID: maintainerGrantID}},
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeCompanyRequired))
		})

		It("should refuse a company on a non-maintainer account", func() {
			_, err := service.CreateMunicipalityUser(user.CreateMunicipalityUserDTO{
				Username:    "sparky",
				Email:       "sparky@example.com",
				Password:    "supersecret",
				Roles:       []user.RoleGrantDTO{{DepartmentRoleID: electricianGrantID}},
				CompanyName: "Lumen Electric S.r.l.",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeCompanyNotAllowed))
		})

		It("should fail when the named company does not exist", func() {
			_, err := service.CreateMunicipalityUser(user.CreateMunicipalityUserDTO{
				Username:    "fixer",
				Email:       "fixer@example.com",
				Password:    "supersecret",
				Roles:       []user.RoleGrantDTO{{DepartmentRoleID: maintainerGrantID}},
				CompanyName: "Ghost Corp",
			})

			Expect(err).To(Equal(internal.ErrCompanyNotFound))
		})

		It("should create a maintainer linked to the resolved company", func() {
			created, err := service.CreateMunicipalityUser(user.CreateMunicipalityUserDTO{
				Username:    "fixer",
				Email:       "fixer@example.com",
				Password:    "supersecret",
				Roles:       []user.RoleGrantDTO{{DepartmentRoleID: maintainerGrantID}},
				CompanyName: "Lumen Electric S.r.l.",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(created.CompanyID).ToNot(BeNil())
			Expect(*created.CompanyID).To(Equal(int64(10)))
		})

		It("should require at least one role", func() {
			_, err := service.CreateMunicipalityUser(user.CreateMunicipalityUserDTO{
				Username: "roleless",
				Email:    "roleless@example.com",
				Password: "supersecret",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmptyRoleList))
		})
	})

	Describe("AssignRole", func() {
		It("should never promote a citizen account", func() {
			mockRepo.users[50] = &user.User{ID: 50, Username: "mario", Roles: staffRoles(citizenGrantID)}

			_, err := service.AssignRole(50, user.AssignRoleDTO{
				RoleGrantDTO: user.RoleGrantDTO{DepartmentRoleID: electricianGrantID},
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeCitizenNotPromotable))
		})

		It("should add a grantable role to a staff account", func() {
			mockRepo.users[51] = &user.User{ID: 51, Username: "sparky", Roles: staffRoles(electricianGrantID)}
			mockRepo.grants[51] = []int64{electricianGrantID}

			_, err := service.AssignRole(51, user.AssignRoleDTO{
				RoleGrantDTO: user.RoleGrantDTO{DepartmentRoleID: directorGrantID},
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.grants[51]).To(ContainElement(directorGrantID))
		})

		It("should reject the Citizen role itself", func() {
			mockRepo.users[51] = &user.User{ID: 51, Username: "sparky", Roles: staffRoles(electricianGrantID)}

			_, err := service.AssignRole(51, user.AssignRoleDTO{
				RoleGrantDTO: user.RoleGrantDTO{DepartmentRoleID: citizenGrantID},
			})

			Expect(err).To(Equal(internal.ErrRoleNotGrantable))
		})

		It("should leave the company link untouched when the grant fails", func() {
			mockRepo.users[58] = &user.User{ID: 58, Username: "sparky", Roles: staffRoles(electricianGrantID)}
			mockRepo.grants[58] = []int64{electricianGrantID}
			mockRepo.addErr = internal.NewConflictError("User already holds this role", internal.ErrCodeRoleAlreadyHeld)

			_, err := service.AssignRole(58, user.AssignRoleDTO{
				RoleGrantDTO: user.RoleGrantDTO{DepartmentRoleID: maintainerGrantID},
				CompanyName:  "Lumen Electric S.r.l.",
			})

			Expect(err).To(HaveOccurred())
			Expect(mockRepo.companies).ToNot(HaveKey(int64(58)))
			Expect(mockRepo.users[58].CompanyID).To(BeNil())
		})
	})

	Describe("RemoveRole", func() {
		It("should refuse to remove a role the user does not hold", func() {
			mockRepo.users[52] = &user.User{ID: 52, Username: "sparky", Roles: staffRoles(electricianGrantID, directorGrantID)}
			mockRepo.grants[52] = []int64{electricianGrantID, directorGrantID}

			_, err := service.RemoveRole(52, maintainerGrantID)

			Expect(err).To(Equal(internal.ErrRoleNotHeld))
		})

		It("should refuse to remove the last role", func() {
			mockRepo.users[53] = &user.User{ID: 53, Username: "sparky", Roles: staffRoles(electricianGrantID)}
			mockRepo.grants[53] = []int64{electricianGrantID}

			_, err := service.RemoveRole(53, electricianGrantID)

			Expect(err).To(Equal(internal.ErrLastRole))
		})

		It("should clear the company when the maintainer role goes away", func() {
			companyID := int64(10)
			mockRepo.users[54] = &user.User{
				ID:        54,
				Username:  "fixer",
				CompanyID: &companyID,
				Roles:     staffRoles(maintainerGrantID, electricianGrantID),
			}
			mockRepo.grants[54] = []int64{maintainerGrantID, electricianGrantID}

			_, err := service.RemoveRole(54, maintainerGrantID)

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.companies[54]).To(BeNil())
		})
	})

	Describe("ReplaceAllRoles", func() {
		It("should reject an empty role list", func() {
			mockRepo.users[55] = &user.User{ID: 55, Username: "sparky", Roles: staffRoles(electricianGrantID)}

			_, err := service.ReplaceAllRoles(55, user.ReplaceRolesDTO{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmptyRoleList))
		})

		It("should swap the full grant set", func() {
			mockRepo.users[56] = &user.User{ID: 56, Username: "sparky", Roles: staffRoles(electricianGrantID)}
			mockRepo.grants[56] = []int64{electricianGrantID}

			_, err := service.ReplaceAllRoles(56, user.ReplaceRolesDTO{
				Roles: []user.RoleGrantDTO{{DepartmentRoleID: directorGrantID}},
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.lastReplaced).To(Equal([]int64{directorGrantID}))
		})

		It("should clear the company when the new set has no maintainer role", func() {
			companyID := int64(10)
			mockRepo.users[57] = &user.User{
				ID:        57,
				Username:  "fixer",
				CompanyID: &companyID,
				Roles:     staffRoles(maintainerGrantID),
			}
			mockRepo.grants[57] = []int64{maintainerGrantID}

			_, err := service.ReplaceAllRoles(57, user.ReplaceRolesDTO{
				Roles: []user.RoleGrantDTO{{DepartmentRoleID: electricianGrantID}},
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.companies[57]).To(BeNil())
		})

		It("should treat an unknown department role as a bad request", func() {
			mockRepo.users[59] = &user.User{ID: 59, Username: "sparky", Roles: staffRoles(electricianGrantID)}
			mockRepo.grants[59] = []int64{electricianGrantID}

			_, err := service.ReplaceAllRoles(59, user.ReplaceRolesDTO{
				Roles: []user.RoleGrantDTO{{DepartmentRoleID: 999}},
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(appErr.Code).To(Equal(internal.ErrCodeDepartmentRoleNotFound))
		})
	})
})
