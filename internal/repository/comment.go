package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment, audit *models.AdminLog) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	UpdateContent(ctx context.Context, id uint, content string, audit *models.AdminLog) error
	Delete(ctx context.Context, id uint, audit *models.AdminLog) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentColumns = `comments.*,
	users.username AS author_username,
	users.role AS author_role,
	users.avatar_url AS author_avatar`

func (r *commentRepository) detailed(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select(commentColumns).
		Joins("JOIN users ON users.id = comments.author_id")
}

// Create inserts comment and, when audit is set, its admin log row in the
// same transaction.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment, audit *models.AdminLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if audit != nil {
			audit.TargetID = comment.ID
		}
		return appendAudit(tx, audit)
	})
	return translate(err, "Comment", comment.ID)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.detailed(ctx).Where("comments.id = ?", id).Take(&comment).Error; err != nil {
		return nil, translate(err, "Comment", id)
	}
	return &comment, nil
}

// ListByPost returns a post's comments oldest first; threads are rebuilt
// client-side from parent_id.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.detailed(ctx).
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC, comments.id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string, audit *models.AdminLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Comment{}).Where("id = ?", id).Update("content", content)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Comment", id)
		}
		return appendAudit(tx, audit)
	})
	return translate(err, "Comment", id)
}

// Delete removes the comment and the reactions on it; replies are kept and
// detached from their parent.
func (r *commentRepository) Delete(ctx context.Context, id uint, audit *models.AdminLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetComment, id).
			Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("parent_id = ?", id).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Comment", id)
		}
		return appendAudit(tx, audit)
	})
	return translate(err, "Comment", id)
}
