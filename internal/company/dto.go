package company

import (
	"strings"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/catalog"
)

type CreateCompanyDTO struct {
	Name     string           `json:"name"`
	Category catalog.Category `json:"category"`
}

func (dto *CreateCompanyDTO) Validate() error {
	dto.Name = strings.TrimSpace(dto.Name)
	if dto.Name == "" {
		return internal.NewValidationError("company name is required", internal.ErrCodeValidationFailed)
	}
	if !dto.Category.Valid() {
		return internal.NewValidationError("unknown category: "+string(dto.Category),
			internal.ErrCodeInvalidCategory)
	}
	return nil
}

type UpdateCompanyDTO struct {
	Name     *string           `json:"name,omitempty"`
	Category *catalog.Category `json:"category,omitempty"`
}

func (dto *UpdateCompanyDTO) Validate() error {
	if dto.Name != nil {
		trimmed := strings.TrimSpace(*dto.Name)
		if trimmed == "" {
			return internal.NewValidationError("company name cannot be empty", internal.ErrCodeValidationFailed)
		}
		dto.Name = &trimmed
	}
	if dto.Category != nil && !dto.Category.Valid() {
		return internal.NewValidationError("unknown category: "+string(*dto.Category),
			internal.ErrCodeInvalidCategory)
	}
	return nil
}
