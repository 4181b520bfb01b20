package seed

import (
	"context"
	"fmt"
	"log/slog"

	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"

	"gorm.io/gorm"
)

// Options configures the demo data seeder.
type Options struct {
	NumUsers         int
	NumPosts         int
	CommentsPerPost  int
	ReactionsPerPost int
	// MaxDays bounds how far back post timestamps are spread.
	MaxDays     int
	SkipBcrypt  bool
	ShouldClean bool
	DryRun      bool
	// RandomSeed makes a run reproducible when non-zero.
	RandomSeed int64
}

// Summary counts what a Seed run created.
type Summary struct {
	Users     int
	Posts     int
	Comments  int
	Reactions int
}

// Seed populates the database with the built-in boards and fake content.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	if opts.NumUsers < 2 {
		return nil, fmt.Errorf("seed needs at least 2 users, got %d", opts.NumUsers)
	}
	log := middleware.Logger.With(slog.Bool("dry_run", opts.DryRun))
	log.Info("seeding database", slog.Int("users", opts.NumUsers), slog.Int("posts", opts.NumPosts))

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	var categories []models.Category
	if opts.DryRun {
		built, err := BuiltInCategories()
		if err != nil {
			return nil, err
		}
		categories = built
	} else {
		repo := repository.NewCategoryRepository(db, nil)
		if err := Categories(ctx, repo); err != nil {
			return nil, err
		}
		listed, err := repo.List(ctx)
		if err != nil {
			return nil, err
		}
		categories = listed
	}

	f := NewFactory(db, opts)
	summary := &Summary{}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		role := seededRole(i)
		user, err := f.CreateUser(func(u *models.User) { u.Role = role })
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	summary.Users = len(users)
	log.Info("users created", slog.Int("count", summary.Users))

	for i := 0; i < opts.NumPosts; i++ {
		category := &categories[f.rng.Intn(len(categories))]
		author := pickAuthor(f, users, category.MinRole)
		if author == nil {
			continue
		}
		post, err := f.CreatePost(author, category)
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		summary.Posts++

		comments, err := seedComments(f, users, post, opts.CommentsPerPost)
		if err != nil {
			return nil, err
		}
		summary.Comments += comments

		reactions, err := seedReactions(ctx, f, users, post, opts.ReactionsPerPost)
		if err != nil {
			return nil, err
		}
		summary.Reactions += reactions
	}

	log.Info("seeding complete",
		slog.Int("posts", summary.Posts),
		slog.Int("comments", summary.Comments),
		slog.Int("reactions", summary.Reactions))
	return summary, nil
}

// seededRole gives the first account admin, every fifth a guide and every
// twentieth a blocked role so demo data covers the whole gate.
func seededRole(i int) models.Role {
	switch {
	case i == 0:
		return models.RoleAdmin
	case i%20 == 19:
		return models.RoleBlocked
	case i%5 == 1:
		return models.RoleGuide
	default:
		return models.RoleNormal
	}
}

func pickAuthor(f *Factory, users []*models.User, minRole models.Role) *models.User {
	eligible := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u.Role != models.RoleBlocked && u.Role.AtLeast(minRole) {
			eligible = append(eligible, u)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	return eligible[f.rng.Intn(len(eligible))]
}

func seedComments(f *Factory, users []*models.User, post *models.Post, max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}
	n := f.rng.Intn(max + 1)
	created := make([]*models.Comment, 0, n)
	for i := 0; i < n; i++ {
		author := pickAuthor(f, users, models.RoleNormal)
		var parent *models.Comment
		if len(created) > 0 && f.rng.Intn(3) == 0 {
			parent = created[f.rng.Intn(len(created))]
		}
		comment, err := f.CreateComment(author, post, parent)
		if err != nil {
			return 0, fmt.Errorf("create comment: %w", err)
		}
		created = append(created, comment)
	}
	return len(created), nil
}

func seedReactions(ctx context.Context, f *Factory, users []*models.User, post *models.Post, max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}
	n := f.rng.Intn(max + 1)
	if n > len(users) {
		n = len(users)
	}
	count := 0
	for _, idx := range f.rng.Perm(len(users))[:n] {
		user := users[idx]
		if user.Role == models.RoleBlocked {
			continue
		}
		if err := f.React(ctx, user, models.PostTarget(post.ID), f.RandomKind()); err != nil {
			return 0, fmt.Errorf("react: %w", err)
		}
		count++
	}
	return count, nil
}

// clearData removes every forum row, children first.
func clearData(db *gorm.DB) error {
	middleware.Logger.Info("clearing existing data")
	all := database.PersistentModels()
	tx := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for i := len(all) - 1; i >= 0; i-- {
		if err := tx.Delete(all[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
