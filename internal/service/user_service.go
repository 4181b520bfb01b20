package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"agora/internal/authz"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService covers registration, credentials and self-service profile
// changes.
type UserService struct {
	users    repository.UserRepository
	posts    *PostService
	hashCost int
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type UpdateProfileInput struct {
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
}

type UpdateThemeInput struct {
	Theme        models.Theme        `json:"theme"`
	CustomColors models.CustomColors `json:"customColors"`
}

func NewUserService(users repository.UserRepository, posts *PostService) *UserService {
	return &UserService{users: users, posts: posts, hashCost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost, for tests and tooling.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.hashCost = cost
	return s
}

// HashPassword hashes a plaintext password with the configured cost.
func (s *UserService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", models.NewValidationError("Password must be at most 72 bytes")
	}
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hash), nil
}

// Register creates a normal account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:        in.Username,
		Email:           in.Email,
		Password:        hash,
		Role:            models.RoleNormal,
		ThemePreference: models.ThemeLight,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks an email and password pair. Unknown emails and wrong
// passwords fail the same way.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	invalid := models.NewUnauthenticatedError("Invalid email or password")
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, invalid
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, invalid
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// PublicProfile returns what anyone may see about username.
func (s *UserService) PublicProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	profile := &models.PublicProfile{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		Posts:     []models.Post{},
	}
	if s.posts != nil {
		posts, err := s.posts.RecentByAuthor(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		profile.Posts = posts
	}
	return profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, actor *models.Actor, in UpdateProfileInput) (*models.User, error) {
	if err := authz.RequireWrite(actor, models.RoleNormal); err != nil {
		return nil, err
	}
	bio := strings.TrimSpace(in.Bio)
	if utf8.RuneCountInString(bio) > validation.BioMax {
		return nil, models.NewValidationError("Bio too long (max 500 characters)")
	}
	avatar := strings.TrimSpace(in.AvatarURL)
	if len(avatar) > validation.AvatarURLMax {
		return nil, models.NewValidationError("Avatar URL too long")
	}
	if avatar != "" {
		if err := validation.Struct(struct {
			AvatarURL string `json:"avatarUrl" validate:"url"`
		}{avatar}); err != nil {
			return nil, err
		}
	}
	if err := s.users.UpdateProfile(ctx, actor.ID, bio, avatar); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, actor.ID)
}

// UpdateTheme stores the actor's theme. Blocked accounts may change it too.
func (s *UserService) UpdateTheme(ctx context.Context, actor *models.Actor, in UpdateThemeInput) (*models.User, error) {
	if err := authz.Require(actor, models.RoleBlocked); err != nil {
		return nil, err
	}
	if err := validation.ValidateTheme(in.Theme); err != nil {
		return nil, err
	}
	if err := validation.Struct(in.CustomColors); err != nil {
		return nil, err
	}
	if err := s.users.UpdateTheme(ctx, actor.ID, in.Theme, in.CustomColors); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, actor.ID)
}

// DeleteAccount removes the actor's own account. Developer accounts cannot
// delete themselves.
func (s *UserService) DeleteAccount(ctx context.Context, actor *models.Actor) error {
	if err := authz.Require(actor, models.RoleBlocked); err != nil {
		return err
	}
	if actor.Role == models.RoleDeveloper {
		return models.NewForbiddenError("Developer accounts cannot be deleted")
	}
	return s.users.Delete(ctx, actor.ID)
}
