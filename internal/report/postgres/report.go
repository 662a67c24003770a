package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/civiport/report-management/internal/core/database"
	"github.com/civiport/report-management/internal/report"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) report.RepositoryAPI {
	return &ReportRepository{db: db}
}

// conn returns the transaction carried by the context, falling back to the
// shared pool.
func (repo *ReportRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := database.TxFrom(ctx); ok {
		return tx
	}
	return repo.db
}

// InTransaction runs fn inside one database transaction. The context passed
// to fn carries the transaction so nested repository calls join it.
func (repo *ReportRepository) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(database.WithTx(ctx, tx))
	})
}

func (repo *ReportRepository) Create(r *report.Report, photoKeys []string) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(r).Error; err != nil {
			return err
		}
		for _, key := range photoKeys {
			photo := report.Photo{ReportID: r.ID, ObjectKey: key}
			if err := tx.Create(&photo).Error; err != nil {
				return err
			}
			r.Photos = append(r.Photos, photo)
		}
		return nil
	})
}

func (repo *ReportRepository) GetByID(id int64) (*report.Report, error) {
	var r report.Report
	err := repo.db.Where("id = ?", id).First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := repo.db.Where("report_id = ?", id).Order("id ASC").Find(&r.Photos).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListByStatus returns oldest first so the approval queue is worked in
// arrival order.
func (repo *ReportRepository) ListByStatus(status report.Status) ([]*report.Report, error) {
	var reports []*report.Report
	err := repo.db.Where("status = ?", status).
		Order("created_at ASC").Find(&reports).Error
	return reports, err
}

func (repo *ReportRepository) ListAll(filter report.ListFilter) ([]*report.Report, error) {
	var reports []*report.Report
	err := applyFilter(repo.db, filter).
		Order("created_at DESC").Find(&reports).Error
	return reports, err
}

func (repo *ReportRepository) ListForParticipant(userID int64, filter report.ListFilter) ([]*report.Report, error) {
	var reports []*report.Report
	err := applyFilter(repo.db, filter).
		Where("reporter_id = ? OR assignee_id = ? OR maintainer_id = ?",
			userID, userID, userID).
		Order("created_at DESC").Find(&reports).Error
	return reports, err
}

// ListByReporter never returns pending reports; the approval queue stays
// invisible outside the officer's views.
func (repo *ReportRepository) ListByReporter(userID int64) ([]*report.Report, error) {
	var reports []*report.Report
	err := repo.db.Where("reporter_id = ? AND status <> ?", userID, report.StatusPendingApproval).
		Order("created_at DESC").Find(&reports).Error
	return reports, err
}

func applyFilter(db *gorm.DB, filter report.ListFilter) *gorm.DB {
	query := db
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ExcludePending {
		query = query.Where("status <> ?", report.StatusPendingApproval)
	}
	return query
}

func (repo *ReportRepository) ListByAssignee(userID int64, status report.Status) ([]*report.Report, error) {
	query := repo.db.Where("assignee_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reports []*report.Report
	err := query.Order("created_at DESC").Find(&reports).Error
	return reports, err
}

// TransitionStatus is a conditional single-statement update: it only
// matches while the row still has the expected status, so two concurrent
// transitions cannot both win.
func (repo *ReportRepository) TransitionStatus(ctx context.Context, id int64, from, to report.Status, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for column, value := range updates {
		values[column] = value
	}

	result := repo.conn(ctx).Model(&report.Report{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetMaintainer only succeeds while the report is still ASSIGNED.
func (repo *ReportRepository) SetMaintainer(ctx context.Context, reportID, maintainerID int64) (bool, error) {
	result := repo.conn(ctx).Model(&report.Report{}).
		Where("id = ? AND status = ?", reportID, report.StatusAssigned).
		Updates(map[string]interface{}{
			"maintainer_id": maintainerID,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *ReportRepository) CountOpenByAssignee(userID int64) (int64, error) {
	var count int64
	err := repo.db.Model(&report.Report{}).
		Where("assignee_id = ? AND status IN ?", userID,
			[]report.Status{report.StatusAssigned, report.StatusInProgress}).
		Count(&count).Error
	return count, err
}
