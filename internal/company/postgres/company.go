package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/company"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) company.RepositoryAPI {
	return &CompanyRepository{db: db}
}

func (repo *CompanyRepository) Create(c *company.Company) error {
	if err := repo.db.Create(c).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (repo *CompanyRepository) Update(c *company.Company) error {
	if err := repo.db.Save(c).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (repo *CompanyRepository) Delete(id int64) error {
	return repo.db.Delete(&company.Company{}, id).Error
}

func (repo *CompanyRepository) GetByID(id int64) (*company.Company, error) {
	var c company.Company
	err := repo.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (repo *CompanyRepository) GetByName(name string) (*company.Company, error) {
	var c company.Company
	err := repo.db.Where("name = ?", name).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (repo *CompanyRepository) List() ([]*company.Company, error) {
	var companies []*company.Company
	err := repo.db.Order("name ASC").Find(&companies).Error
	return companies, err
}

func (repo *CompanyRepository) CountMaintainers(companyID int64) (int64, error) {
	var count int64
	err := repo.db.Raw(`SELECT COUNT(*) FROM users WHERE company_id = ?`, companyID).Scan(&count).Error
	return count, err
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return internal.ErrDuplicateCompany
	}
	return err
}
