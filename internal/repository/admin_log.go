package repository

import (
	"context"
	"time"

	"agora/internal/models"

	"gorm.io/gorm"
)

// AdminLogRepository reads and appends audit records.
type AdminLogRepository interface {
	Append(ctx context.Context, entry *models.AdminLog) error
	List(ctx context.Context, limit, offset int) ([]models.AdminLog, int64, error)
	Stats(ctx context.Context) (*models.ForumStats, error)
}

type adminLogRepository struct {
	db *gorm.DB
}

// NewAdminLogRepository creates a new AdminLogRepository
func NewAdminLogRepository(db *gorm.DB) AdminLogRepository {
	return &adminLogRepository{db: db}
}

func (r *adminLogRepository) Append(ctx context.Context, entry *models.AdminLog) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error, "AdminLog", entry.ID)
}

// List returns audit records newest first with the acting admin's name.
func (r *adminLogRepository) List(ctx context.Context, limit, offset int) ([]models.AdminLog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.AdminLog{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	logs := []models.AdminLog{}
	err := r.db.WithContext(ctx).Model(&models.AdminLog{}).
		Select("admin_logs.*, users.username AS admin_username").
		Joins("LEFT JOIN users ON users.id = admin_logs.admin_id").
		Order("admin_logs.created_at DESC, admin_logs.id DESC").
		Limit(clampLimit(limit, 50, maxPageSize)).
		Offset(clampOffset(offset)).
		Find(&logs).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return logs, total, nil
}

// Stats aggregates the dashboard counters.
func (r *adminLogRepository) Stats(ctx context.Context) (*models.ForumStats, error) {
	db := r.db.WithContext(ctx)
	stats := &models.ForumStats{}
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.User{}, &stats.Users},
		{&models.Post{}, &stats.Posts},
		{&models.Comment{}, &stats.Comments},
		{&models.Reaction{}, &stats.Reactions},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := db.Model(&models.Post{}).Where("created_at >= ?", midnight).Count(&stats.PostsToday).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return stats, nil
}
