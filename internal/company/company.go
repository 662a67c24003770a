package company

import (
	"time"

	"github.com/civiport/report-management/internal/catalog"
)

// Company is an external contractor scoped to a single category of work.
// External Maintainer users belong to exactly one company.
type Company struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Category  catalog.Category `json:"category"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (Company) TableName() string {
	return "companies"
}
