package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"agora/internal/config"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// EnsureDeveloper creates or promotes the bootstrap developer account.
// It only acts in development with DEV_BOOTSTRAP_DEVELOPER enabled.
func EnsureDeveloper(ctx context.Context, cfg *config.Config, users repository.UserRepository) (*models.User, error) {
	if cfg == nil || !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapDeveloper {
		return nil, nil
	}

	username := strings.TrimSpace(cfg.DeveloperUsername)
	if username == "" {
		username = "developer"
	}
	email := strings.ToLower(strings.TrimSpace(cfg.DeveloperEmail))
	if email == "" {
		email = "developer@agora.local"
	}
	if cfg.DeveloperPassword == "" {
		return nil, errors.New("DEVELOPER_PASSWORD must be set when DEV_BOOTSTRAP_DEVELOPER is enabled")
	}

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != models.RoleDeveloper {
			if err := users.UpdateRole(ctx, existing.ID, models.RoleDeveloper, nil); err != nil {
				return nil, fmt.Errorf("promote developer: %w", err)
			}
			existing.Role = models.RoleDeveloper
		}
		return existing, nil
	case !models.HasCode(err, models.CodeNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DeveloperPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash developer password: %w", err)
	}
	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleDeveloper,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create developer: %w", err)
	}
	middleware.Logger.Info("developer account bootstrapped", slog.String("email", email))
	return user, nil
}
