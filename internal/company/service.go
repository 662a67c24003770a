package company

import (
	"log/slog"

	"github.com/civiport/report-management/internal"
)

// RepositoryAPI is the data access surface for companies. Lookups return
// nil when the row is absent.
type RepositoryAPI interface {
	Create(company *Company) error
	Update(company *Company) error
	Delete(id int64) error
	GetByID(id int64) (*Company, error)
	GetByName(name string) (*Company, error)
	List() ([]*Company, error)
	CountMaintainers(companyID int64) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) CreateCompany(dto CreateCompanyDTO) (*Company, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	company := &Company{
		Name:     dto.Name,
		Category: dto.Category,
	}
	if err := s.repo.Create(company); err != nil {
		s.logger.Error("failed to create company", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("company created", "company_id", company.ID, "name", company.Name)
	return company, nil
}

func (s *Service) UpdateCompany(id int64, dto UpdateCompanyDTO) (*Company, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	company, err := s.GetCompany(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		company.Name = *dto.Name
	}
	if dto.Category != nil {
		company.Category = *dto.Category
	}

	if err := s.repo.Update(company); err != nil {
		s.logger.Error("failed to update company", "error", err, "company_id", id)
		return nil, err
	}
	return company, nil
}

func (s *Service) DeleteCompany(id int64) error {
	if _, err := s.GetCompany(id); err != nil {
		return err
	}

	maintainers, err := s.repo.CountMaintainers(id)
	if err != nil {
		s.logger.Error("failed to count company maintainers", "error", err, "company_id", id)
		return err
	}
	if maintainers > 0 {
		return internal.NewConflictError("Company still has maintainers assigned", internal.ErrCodeCompanyInUse)
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete company", "error", err, "company_id", id)
		return err
	}
	s.logger.Info("company deleted", "company_id", id)
	return nil
}

func (s *Service) GetCompany(id int64) (*Company, error) {
	company, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to look up company", "error", err, "company_id", id)
		return nil, err
	}
	if company == nil {
		return nil, internal.ErrCompanyNotFound
	}
	return company, nil
}

// FindByName resolves a company by its exact name. Used when granting the
// External Maintainer role, which requires a company.
func (s *Service) FindByName(name string) (*Company, error) {
	company, err := s.repo.GetByName(name)
	if err != nil {
		s.logger.Error("failed to look up company", "error", err, "name", name)
		return nil, err
	}
	if company == nil {
		return nil, internal.ErrCompanyNotFound
	}
	return company, nil
}

func (s *Service) ListCompanies() ([]*Company, error) {
	return s.repo.List()
}
