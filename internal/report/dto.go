package report

import (
	"strings"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/catalog"
)

type CreateReportDTO struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    catalog.Category `json:"category"`
	Latitude    float64          `json:"latitude"`
	Longitude   float64          `json:"longitude"`
	PhotoKeys   []string         `json:"photo_keys"`
}

// Validate checks everything except the municipal boundary, which depends
// on configuration and is enforced by the service.
func (dto *CreateReportDTO) Validate() error {
	dto.Title = strings.TrimSpace(dto.Title)
	dto.Description = strings.TrimSpace(dto.Description)
	if dto.Title == "" {
		return internal.NewValidationError("title is required", internal.ErrCodeValidationFailed)
	}
	if dto.Description == "" {
		return internal.NewValidationError("description is required", internal.ErrCodeValidationFailed)
	}
	if !dto.Category.Valid() {
		return internal.NewValidationError("unknown category: "+string(dto.Category),
			internal.ErrCodeInvalidCategory)
	}
	if len(dto.PhotoKeys) == 0 {
		return internal.NewValidationError("at least one photo is required",
			internal.ErrCodePhotoRequired)
	}
	return nil
}

type RejectReportDTO struct {
	Reason string `json:"reason"`
}

type DelegateReportDTO struct {
	MaintainerID int64 `json:"maintainer_id"`
}

type TransitionDTO struct {
	Status Status `json:"status"`
}
