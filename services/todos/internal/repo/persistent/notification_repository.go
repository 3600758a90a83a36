package persistent

import (
	"context"
	"time"

	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db, now: time.Now}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return r.db.WithContext(ctx).Create(ToNotificationModel(notification)).Error
}

func (r *notificationRepository) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var notificationModels []model.NotificationModel
	if err := query.Find(&notificationModels).Error; err != nil {
		return nil, err
	}

	notifications := make([]*entity.Notification, len(notificationModels))
	for i := range notificationModels {
		notifications[i] = ToNotificationEntity(&notificationModels[i])
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkRead is idempotent for already-read notifications and returns
// gorm.ErrRecordNotFound when the notification is not the user's.
func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	var notificationModel model.NotificationModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&notificationModel).Error; err != nil {
		return err
	}
	if notificationModel.ReadAt != nil {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("id = ?", id).
		Update("read_at", r.now()).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", r.now())
	return result.RowsAffected, result.Error
}
