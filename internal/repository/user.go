package repository

import (
	"context"
	"strings"

	"agora/internal/cache"
	"agora/internal/models"

	"gorm.io/gorm"
)

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search string
	Limit  int
	Offset int
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id uint, bio, avatarURL string) error
	UpdateTheme(ctx context.Context, id uint, theme models.Theme, colors models.CustomColors) error
	UpdateRole(ctx context.Context, id uint, role models.Role, audit *models.AdminLog) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
}

type userRepository struct {
	db    *gorm.DB
	cache *cache.Store
}

// NewUserRepository returns a UserRepository. store may be nil.
func NewUserRepository(db *gorm.DB, store *cache.Store) UserRepository {
	return &userRepository{db: db, cache: store}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return translate(r.db.WithContext(ctx).First(&user, id).Error, "User", id)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "User", email)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err, "User", username)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Username or email already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) updateColumns(ctx context.Context, id uint, values map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	r.cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint, bio, avatarURL string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"bio":        bio,
		"avatar_url": avatarURL,
	})
}

func (r *userRepository) UpdateTheme(ctx context.Context, id uint, theme models.Theme, colors models.CustomColors) error {
	// Updates with a struct applies the JSON serializer to custom_colors.
	res := r.db.WithContext(ctx).Model(&models.User{ID: id}).
		Select("theme_preference", "custom_colors").
		Updates(&models.User{ThemePreference: theme, CustomColors: colors})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	r.cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint, role models.Role, audit *models.AdminLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", id).Update("role", role)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", id)
		}
		return appendAudit(tx, audit)
	})
	if err != nil {
		return translate(err, "User", id)
	}
	r.cache.InvalidateUser(ctx, id)
	return nil
}

// Delete removes the account together with everything it owns. Reactions the
// user cast are withdrawn first so target counters stay consistent.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cast []models.Reaction
		if err := tx.Where("user_id = ?", id).Find(&cast).Error; err != nil {
			return err
		}
		for _, reaction := range cast {
			if err := adjustCounter(tx, reaction.TargetType, reaction.TargetID, reaction.ReactionType, -1); err != nil && !models.HasCode(err, models.CodeNotFound) {
				return err
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}

		ownedPosts := tx.Model(&models.Post{}).Select("id").Where("author_id = ?", id)
		doomedComments := tx.Model(&models.Comment{}).Select("id").
			Where("author_id = ? OR post_id IN (?)", id, ownedPosts)

		if err := tx.Where("target_type = ? AND target_id IN (?)", models.TargetPost, ownedPosts).
			Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_type = ? AND target_id IN (?)", models.TargetComment, doomedComments).
			Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("parent_id IN (?)", doomedComments).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ? OR post_id IN (?)", id, ownedPosts).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", id)
		}
		return nil
	})
	if err != nil {
		return translate(err, "User", id)
	}
	r.cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.User{})
		if s := strings.TrimSpace(filter.Search); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			q = q.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var users []models.User
	err := base().Order("id ASC").
		Limit(clampLimit(filter.Limit, 50, maxPageSize)).
		Offset(clampOffset(filter.Offset)).
		Find(&users).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}
