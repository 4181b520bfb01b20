package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// PostFilter selects a page of posts.
type PostFilter struct {
	CategorySlug string
	AuthorID     uint
	Limit        int
	Offset       int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	List(ctx context.Context, filter PostFilter) ([]models.Post, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Create(ctx context.Context, post *models.Post, audit *models.AdminLog) error
	Update(ctx context.Context, post *models.Post, audit *models.AdminLog) error
	Delete(ctx context.Context, id uint, audit *models.AdminLog) error
	SetPinned(ctx context.Context, id uint, pinned bool, audit *models.AdminLog) error
	IncrementViews(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `posts.*,
	users.username AS author_username,
	users.role AS author_role,
	users.avatar_url AS author_avatar,
	categories.name AS category_name,
	categories.slug AS category_slug,
	categories.icon AS category_icon,
	(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count`

// detailed selects posts joined with their author and category.
func (r *postRepository) detailed(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(postColumns).
		Joins("JOIN users ON users.id = posts.author_id").
		Joins("JOIN categories ON categories.id = posts.category_id")
}

func applyPostFilter(q *gorm.DB, filter PostFilter) *gorm.DB {
	if filter.CategorySlug != "" {
		q = q.Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.AuthorID != 0 {
		q = q.Where("posts.author_id = ?", filter.AuthorID)
	}
	return q
}

// List returns pinned posts first, then newest first.
func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]models.Post, int64, error) {
	countQ := r.db.WithContext(ctx).Model(&models.Post{}).
		Joins("JOIN categories ON categories.id = posts.category_id")
	var total int64
	if err := applyPostFilter(countQ, filter).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	posts := []models.Post{}
	err := applyPostFilter(r.detailed(ctx), filter).
		Order("posts.is_pinned DESC, posts.created_at DESC, posts.id DESC").
		Limit(clampLimit(filter.Limit, defaultPageSize, maxPageSize)).
		Offset(clampOffset(filter.Offset)).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.detailed(ctx).Where("posts.id = ?", id).Take(&post).Error; err != nil {
		return nil, translate(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, audit *models.AdminLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if audit != nil {
			audit.TargetID = post.ID
		}
		return appendAudit(tx, audit)
	})
	return translate(err, "Post", post.ID)
}

func (r *postRepository) Update(ctx context.Context, post *models.Post, audit *models.AdminLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
			"title":       post.Title,
			"content":     post.Content,
			"category_id": post.CategoryID,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", post.ID)
		}
		return appendAudit(tx, audit)
	})
	return translate(err, "Post", post.ID)
}

// Delete removes the post, its comments, and every reaction pointing at them.
func (r *postRepository) Delete(ctx context.Context, id uint, audit *models.AdminLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Where("target_type = ? AND target_id IN (?)", models.TargetComment, commentIDs).
			Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetPost, id).
			Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("post_id = ? AND parent_id IS NOT NULL", id).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return appendAudit(tx, audit)
	})
	return translate(err, "Post", id)
}

func (r *postRepository) SetPinned(ctx context.Context, id uint, pinned bool, audit *models.AdminLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", id).UpdateColumn("is_pinned", pinned)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return appendAudit(tx, audit)
	})
	return translate(err, "Post", id)
}

func (r *postRepository) IncrementViews(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}
