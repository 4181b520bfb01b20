// Package seed creates the built-in boards, the bootstrap developer account
// and fake demo content for development databases.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "password123"

// Factory builds forum entities and persists them to the database.
type Factory struct {
	db        *gorm.DB
	reactions repository.ReactionRepository
	opts      Options
	rng       *rand.Rand
	hash      string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	f := &Factory{
		db:     db,
		opts:   opts,
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // seeding only
		nextID: 1000,
	}
	if db != nil {
		f.reactions = repository.NewReactionRepository(db)
	}
	return f
}

func (f *Factory) passwordHash() string {
	if f.hash != "" {
		return f.hash
	}
	if f.opts.SkipBcrypt {
		f.hash = DefaultPassword
		return f.hash
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		f.hash = DefaultPassword
		return f.hash
	}
	f.hash = string(hashed)
	return f.hash
}

// backdate spreads creation times over the last MaxDays days.
func (f *Factory) backdate() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	offset := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-offset)
}

func (f *Factory) persist(v any, assignID func(uint)) error {
	if f.opts.DryRun {
		f.nextID++
		assignID(f.nextID)
		return nil
	}
	return f.db.Create(v).Error
}

// BuildUser returns an unsaved user with fake profile data.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	name := strings.ToLower(gofakeit.Username())
	name = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 14 {
		name = name[:14]
	}
	username := fmt.Sprintf("%s%d", name, gofakeit.Number(100, 9999))
	user := &models.User{
		Username:        username,
		Email:           username + "@example.com",
		Password:        f.passwordHash(),
		Role:            models.RoleNormal,
		Bio:             gofakeit.Sentence(10),
		AvatarURL:       fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		ThemePreference: models.ThemeLight,
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser persists a fake user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.persist(user, func(id uint) { user.ID = id }); err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a fake post by author in category.
func (f *Factory) CreatePost(author *models.User, category *models.Category, overrides ...func(*models.Post)) (*models.Post, error) {
	title := strings.TrimSuffix(gofakeit.Sentence(f.rng.Intn(6)+3), ".")
	if len(title) > 200 {
		title = title[:200]
	}
	post := &models.Post{
		Title:      title,
		Content:    gofakeit.Paragraph(f.rng.Intn(3)+1, 4, 10, "\n\n"),
		AuthorID:   author.ID,
		CategoryID: category.ID,
		ViewCount:  f.rng.Intn(500),
		CreatedAt:  f.backdate(),
	}
	post.UpdatedAt = post.CreatedAt
	for _, override := range overrides {
		override(post)
	}
	if err := f.persist(post, func(id uint) { post.ID = id }); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a fake comment on post, optionally replying to parent.
func (f *Factory) CreateComment(author *models.User, post *models.Post, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		Content:  gofakeit.Sentence(f.rng.Intn(12) + 4),
		AuthorID: author.ID,
		PostID:   post.ID,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}
	if err := f.persist(comment, func(id uint) { comment.ID = id }); err != nil {
		return nil, err
	}
	return comment, nil
}

// React applies a like or dislike through the reaction repository so the
// cached counters stay consistent with the reaction rows.
func (f *Factory) React(ctx context.Context, user *models.User, target models.Target, kind models.ReactionKind) error {
	if f.opts.DryRun {
		log.Printf("[dry-run] React: user=%d %s/%d %s", user.ID, target.Type, target.ID, kind)
		return nil
	}
	_, err := f.reactions.Toggle(ctx, user.ID, target, kind)
	return err
}

// RandomKind returns like three times out of four.
func (f *Factory) RandomKind() models.ReactionKind {
	if f.rng.Intn(4) == 0 {
		return models.ReactionDislike
	}
	return models.ReactionLike
}
