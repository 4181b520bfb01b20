package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// MaxNotifications bounds a notification listing.
const MaxNotifications = 50

// NotificationRepository stores notifications and keeps the recipient's
// unread counter in step with them.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID uint) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID uint, ids []uint) (int64, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		res := tx.Model(&models.User{}).Where("id = ?", n.UserID).
			UpdateColumn("notification_count", gorm.Expr("notification_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", n.UserID)
		}
		return nil
	})
	return translate(err, "Notification", n.ID)
}

// ListForUser returns the newest notifications of userID.
func (r *notificationRepository) ListForUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	list := []models.Notification{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(MaxNotifications).
		Find(&list).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return list, nil
}

// MarkRead marks ids (or every unread notification when ids is empty) as
// read and recomputes the unread counter from the table.
func (r *notificationRepository) MarkRead(ctx context.Context, userID uint, ids []uint) (int64, error) {
	var unread int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false)
		if len(ids) > 0 {
			q = q.Where("id IN ?", ids)
		}
		if err := q.Update("is_read", true).Error; err != nil {
			return err
		}
		res := tx.Exec(
			"UPDATE users SET notification_count = (SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = ?) WHERE id = ?",
			userID, false, userID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", userID)
		}
		return tx.Model(&models.User{}).Select("notification_count").
			Where("id = ?", userID).Scan(&unread).Error
	})
	if err != nil {
		return 0, translate(err, "User", userID)
	}
	return unread, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
