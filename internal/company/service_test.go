package company_test

import (
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/catalog"
	"github.com/civiport/report-management/internal/company"
)

func TestCompany(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Company Suite")
}

type mockCompanyRepository struct {
	companies   map[int64]*company.Company
	maintainers map[int64]int64
	nextID      int64
}

func newMockCompanyRepository() *mockCompanyRepository {
	return &mockCompanyRepository{
		companies:   make(map[int64]*company.Company),
		maintainers: make(map[int64]int64),
		nextID:      1,
	}
}

func (m *mockCompanyRepository) Create(c *company.Company) error {
	for _, existing := range m.companies {
		if existing.Name == c.Name {
			return internal.ErrDuplicateCompany
		}
	}
	c.ID = m.nextID
	m.nextID++
	m.companies[c.ID] = c
	return nil
}

func (m *mockCompanyRepository) Update(c *company.Company) error {
	m.companies[c.ID] = c
	return nil
}

func (m *mockCompanyRepository) Delete(id int64) error {
	delete(m.companies, id)
	return nil
}

func (m *mockCompanyRepository) GetByID(id int64) (*company.Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (m *mockCompanyRepository) GetByName(name string) (*company.Company, error) {
	for _, c := range m.companies {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCompanyRepository) List() ([]*company.Company, error) {
	result := make([]*company.Company, 0, len(m.companies))
	for _, c := range m.companies {
		result = append(result, c)
	}
	return result, nil
}

func (m *mockCompanyRepository) CountMaintainers(companyID int64) (int64, error) {
	return m.maintainers[companyID], nil
}

var _ = Describe("CompanyService", func() {
	var (
		service  *company.Service
		mockRepo *mockCompanyRepository
	)

	BeforeEach(func() {
		mockRepo = newMockCompanyRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = company.NewService(mockRepo, logger)
	})

	Describe("CreateCompany", func() {
		It("should create a company with a valid category", func() {
			created, err := service.CreateCompany(company.CreateCompanyDTO{
				Name:     "Lumen Electric S.r.l.",
				Category: catalog.CategoryPublicLighting,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(created.ID).To(BeNumerically(">", 0))
		})

		It("should reject an unknown category", func() {
			_, err := service.CreateCompany(company.CreateCompanyDTO{
				Name:     "Odd Jobs Inc",
				Category: "Everything",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidCategory))
		})

		It("should reject a blank name", func() {
			_, err := service.CreateCompany(company.CreateCompanyDTO{
				Name:     "   ",
				Category: catalog.CategoryPublicLighting,
			})

			Expect(err).To(HaveOccurred())
		})

		It("should surface duplicate names as conflicts", func() {
			_, err := service.CreateCompany(company.CreateCompanyDTO{
				Name:     "Lumen Electric S.r.l.",
				Category: catalog.CategoryPublicLighting,
			})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.CreateCompany(company.CreateCompanyDTO{
				Name:     "Lumen Electric S.r.l.",
				Category: catalog.CategoryPublicLighting,
			})

			Expect(err).To(Equal(internal.ErrDuplicateCompany))
		})
	})

	Describe("DeleteCompany", func() {
		It("should refuse to delete a company with maintainers", func() {
			created, err := service.CreateCompany(company.CreateCompanyDTO{
				Name:     "AquaFix Services",
				Category: catalog.CategoryWaterAndSewer,
			})
			Expect(err).ToNot(HaveOccurred())
			mockRepo.maintainers[created.ID] = 2

			err = service.DeleteCompany(created.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeCompanyInUse))
		})

		It("should delete an unused company", func() {
			created, err := service.CreateCompany(company.CreateCompanyDTO{
				Name:     "AquaFix Services",
				Category: catalog.CategoryWaterAndSewer,
			})
			Expect(err).ToNot(HaveOccurred())

			Expect(service.DeleteCompany(created.ID)).To(Succeed())
			Expect(mockRepo.companies).To(BeEmpty())
		})
	})

	Describe("FindByName", func() {
		It("should return not found for unknown names", func() {
			_, err := service.FindByName("Ghost Corp")

			Expect(err).To(Equal(internal.ErrCompanyNotFound))
		})
	})
})
