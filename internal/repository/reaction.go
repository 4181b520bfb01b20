package repository

import (
	"context"
	"errors"

	"agora/internal/models"

	"gorm.io/gorm"
)

// ToggleResult reports the effect of a toggle and the target's counters
// after it committed.
type ToggleResult struct {
	Outcome  models.ReactionOutcome `json:"result"`
	Current  models.ReactionKind    `json:"current,omitempty"`
	Likes    int                    `json:"likes"`
	Dislikes int                    `json:"dislikes"`
	// OwnerID is the author of the target, for notification routing.
	OwnerID uint `json:"-"`
}

// ReactionRepository persists likes and dislikes together with the
// denormalized counters on their targets.
type ReactionRepository interface {
	Toggle(ctx context.Context, userID uint, target models.Target, kind models.ReactionKind) (*ToggleResult, error)
	Get(ctx context.Context, userID uint, target models.Target) (*models.Reaction, error)
	KindsFor(ctx context.Context, userID uint, targetType models.TargetType, ids []uint) (map[uint]models.ReactionKind, error)
	Count(ctx context.Context, target models.Target, kind models.ReactionKind) (int64, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// counterTargets maps a target type to the table holding its counters.
var counterTargets = map[models.TargetType]func() interface{}{
	models.TargetPost:    func() interface{} { return &models.Post{} },
	models.TargetComment: func() interface{} { return &models.Comment{} },
}

func resourceName(tt models.TargetType) string {
	if tt == models.TargetComment {
		return "Comment"
	}
	return "Post"
}

// adjustCounter moves the kind counter of a target by delta.
func adjustCounter(tx *gorm.DB, tt models.TargetType, id uint, kind models.ReactionKind, delta int) error {
	model, ok := counterTargets[tt]
	if !ok {
		return models.NewValidationError("Unknown target type")
	}
	col := kind.CounterColumn()
	res := tx.Model(model()).Where("id = ?", id).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(resourceName(tt), id)
	}
	return nil
}

type targetRow struct {
	AuthorID uint
	Likes    int
	Dislikes int
}

func loadTarget(tx *gorm.DB, target models.Target, lock bool) (*targetRow, error) {
	model, ok := counterTargets[target.Type]
	if !ok {
		return nil, models.NewValidationError("Unknown target type")
	}
	q := tx
	if lock {
		q = forUpdate(tx)
	}
	var row targetRow
	err := q.Model(model()).Select("author_id", "likes", "dislikes").
		Where("id = ?", target.ID).Take(&row).Error
	if err != nil {
		return nil, translate(err, resourceName(target.Type), target.ID)
	}
	return &row, nil
}

// Toggle applies a like or dislike from userID to target:
//   - no existing reaction: insert it (added)
//   - same kind: delete it (removed)
//   - opposite kind: switch it (changed)
//
// The reaction row and the target counters change in one transaction.
func (r *reactionRepository) Toggle(ctx context.Context, userID uint, target models.Target, kind models.ReactionKind) (*ToggleResult, error) {
	result := &ToggleResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := loadTarget(tx, target, true)
		if err != nil {
			return err
		}
		result.OwnerID = owner.AuthorID

		var existing models.Reaction
		err = forUpdate(tx).
			Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target.Type, target.ID).
			Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := &models.Reaction{UserID: userID, TargetType: target.Type, TargetID: target.ID, ReactionType: kind}
			if err := tx.Create(row).Error; err != nil {
				if isUniqueViolation(err) {
					return models.NewConflictError("Reaction changed concurrently, please retry")
				}
				return err
			}
			if err := adjustCounter(tx, target.Type, target.ID, kind, 1); err != nil {
				return err
			}
			result.Outcome = models.ReactionAdded
			result.Current = kind

		case err != nil:
			return err

		case existing.ReactionType == kind:
			res := tx.Delete(&models.Reaction{}, existing.ID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return models.NewConflictError("Reaction changed concurrently, please retry")
			}
			if err := adjustCounter(tx, target.Type, target.ID, kind, -1); err != nil {
				return err
			}
			result.Outcome = models.ReactionRemoved

		default:
			res := tx.Model(&models.Reaction{}).
				Where("id = ? AND reaction_type = ?", existing.ID, existing.ReactionType).
				Update("reaction_type", kind)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return models.NewConflictError("Reaction changed concurrently, please retry")
			}
			if err := adjustCounter(tx, target.Type, target.ID, existing.ReactionType, -1); err != nil {
				return err
			}
			if err := adjustCounter(tx, target.Type, target.ID, kind, 1); err != nil {
				return err
			}
			result.Outcome = models.ReactionChanged
			result.Current = kind
		}

		after, err := loadTarget(tx, target, false)
		if err != nil {
			return err
		}
		result.Likes = after.Likes
		result.Dislikes = after.Dislikes
		return nil
	})
	if err != nil {
		return nil, translate(err, resourceName(target.Type), target.ID)
	}
	return result, nil
}

func (r *reactionRepository) Get(ctx context.Context, userID uint, target models.Target) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target.Type, target.ID).
		Take(&reaction).Error
	if err != nil {
		return nil, translate(err, "Reaction", target.ID)
	}
	return &reaction, nil
}

// KindsFor returns the reaction userID left on each of ids, keyed by target id.
func (r *reactionRepository) KindsFor(ctx context.Context, userID uint, targetType models.TargetType, ids []uint) (map[uint]models.ReactionKind, error) {
	kinds := make(map[uint]models.ReactionKind, len(ids))
	if userID == 0 || len(ids) == 0 {
		return kinds, nil
	}
	var rows []models.Reaction
	err := r.db.WithContext(ctx).
		Select("target_id", "reaction_type").
		Where("user_id = ? AND target_type = ? AND target_id IN ?", userID, targetType, ids).
		Find(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		kinds[row.TargetID] = row.ReactionType
	}
	return kinds, nil
}

func (r *reactionRepository) Count(ctx context.Context, target models.Target, kind models.ReactionKind) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("target_type = ? AND target_id = ? AND reaction_type = ?", target.Type, target.ID, kind).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
