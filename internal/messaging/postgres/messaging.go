package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/civiport/report-management/internal/core/database"
	"github.com/civiport/report-management/internal/messaging"
)

type MessagingRepository struct {
	db *gorm.DB
}

func NewMessagingRepository(db *gorm.DB) messaging.RepositoryAPI {
	return &MessagingRepository{db: db}
}

// conn joins a transaction carried by the context, so notification rows
// written from event handlers commit together with the triggering update.
func (repo *MessagingRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := database.TxFrom(ctx); ok {
		return tx
	}
	return repo.db
}

func (repo *MessagingRepository) CreateMessage(m *messaging.Message) error {
	return repo.db.Create(m).Error
}

func (repo *MessagingRepository) ListMessages(reportID int64) ([]*messaging.Message, error) {
	var msgs []*messaging.Message
	err := repo.db.Where("report_id = ?", reportID).
		Order("created_at ASC").Find(&msgs).Error
	return msgs, err
}

func (repo *MessagingRepository) CreateComment(c *messaging.InternalComment) error {
	return repo.db.Create(c).Error
}

func (repo *MessagingRepository) ListComments(reportID int64) ([]*messaging.InternalComment, error) {
	var comments []*messaging.InternalComment
	err := repo.db.Where("report_id = ?", reportID).
		Order("created_at ASC").Find(&comments).Error
	return comments, err
}

func (repo *MessagingRepository) CreateNotification(ctx context.Context, n *messaging.Notification) error {
	return repo.conn(ctx).Create(n).Error
}

func (repo *MessagingRepository) ListNotificationsForUser(userID int64) ([]*messaging.Notification, error) {
	var notifications []*messaging.Notification
	err := repo.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (repo *MessagingRepository) GetNotification(id int64) (*messaging.Notification, error) {
	var n messaging.Notification
	err := repo.db.Where("id = ?", id).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (repo *MessagingRepository) SetRead(id int64, isRead bool) error {
	return repo.db.Model(&messaging.Notification{}).
		Where("id = ?", id).
		Update("is_read", isRead).Error
}
