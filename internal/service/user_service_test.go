package service

import (
	"context"
	"strings"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Register(ctx, RegisterInput{Username: " newbie ", Email: "NewBie@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "newbie", user.Username)
	assert.Equal(t, "newbie@example.com", user.Email)
	assert.Equal(t, models.RoleNormal, user.Role)
	assert.NotEqual(t, "secret1", user.Password)

	got, err := env.users.Authenticate(ctx, "newbie@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = env.users.Authenticate(ctx, "newbie@example.com", "wrong-pass")
	assertCode(t, err, models.CodeUnauthenticated)
	_, err = env.users.Authenticate(ctx, "ghost@example.com", "secret1")
	assertCode(t, err, models.CodeUnauthenticated)
	_, err = env.users.Authenticate(ctx, "", "")
	assertCode(t, err, models.CodeUnauthenticated)
}

func TestUserService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.users.Register(ctx, RegisterInput{Username: "taken", Email: "taken@example.com", Password: "secret1"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   RegisterInput
		code string
		msg  string
	}{
		{"missing fields", RegisterInput{Username: "x"}, models.CodeValidation, "Username, email, and password are required"},
		{"short username", RegisterInput{Username: "a", Email: "a@example.com", Password: "secret1"}, models.CodeValidation, "Username must be 2-20 letters, numbers, underscores or Hangul"},
		{"bad username", RegisterInput{Username: "bad name!", Email: "b@example.com", Password: "secret1"}, models.CodeValidation, "Username must be 2-20 letters, numbers, underscores or Hangul"},
		{"bad email", RegisterInput{Username: "valid", Email: "nope", Password: "secret1"}, models.CodeValidation, "Invalid email address"},
		{"short password", RegisterInput{Username: "valid", Email: "valid@example.com", Password: "123"}, models.CodeValidation, "Password must be at least 6 characters"},
		{"long password", RegisterInput{Username: "valid", Email: "valid@example.com", Password: strings.Repeat("p", 73)}, models.CodeValidation, "Password must be at most 72 characters"},
		{"password over 72 bytes", RegisterInput{Username: "valid", Email: "valid@example.com", Password: strings.Repeat("비", 30)}, models.CodeValidation, "Password must be at most 72 bytes"},
		{"duplicate username", RegisterInput{Username: "taken", Email: "other@example.com", Password: "secret1"}, models.CodeConflict, ""},
		{"duplicate email", RegisterInput{Username: "other", Email: "TAKEN@example.com", Password: "secret1"}, models.CodeConflict, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.Register(ctx, tt.in)
			assertCode(t, err, tt.code)
			if tt.msg != "" {
				assert.EqualError(t, err, tt.msg)
			}
		})
	}
}

func TestUserService_ProfileAndTheme(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.user(t, "alice", models.RoleNormal)
	_, blocked := env.user(t, "blocked", models.RoleBlocked)
	ctx := context.Background()

	user, err := env.users.UpdateProfile(ctx, alice, UpdateProfileInput{Bio: " hello ", AvatarURL: "https://example.com/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "hello", user.Bio)
	assert.Equal(t, "https://example.com/a.png", user.AvatarURL)

	_, err = env.users.UpdateProfile(ctx, alice, UpdateProfileInput{AvatarURL: "not a url"})
	assertCode(t, err, models.CodeValidation)
	_, err = env.users.UpdateProfile(ctx, blocked, UpdateProfileInput{Bio: "let me out"})
	assertCode(t, err, models.CodeForbidden)

	user, err = env.users.UpdateTheme(ctx, blocked, UpdateThemeInput{Theme: models.ThemeDark, CustomColors: models.CustomColors{Primary: "#112233"}})
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, user.ThemePreference)
	assert.Equal(t, "#112233", user.CustomColors.Primary)

	_, err = env.users.UpdateTheme(ctx, alice, UpdateThemeInput{Theme: "neon"})
	assertCode(t, err, models.CodeValidation)
	_, err = env.users.UpdateTheme(ctx, alice, UpdateThemeInput{Theme: models.ThemeIng, CustomColors: models.CustomColors{Accent: "red"}})
	assertCode(t, err, models.CodeValidation)
}

func TestUserService_PublicProfile(t *testing.T) {
	env := newTestEnv(t)
	author, _ := env.user(t, "author", models.RoleGuide)
	createPost(t, env, author)
	ctx := context.Background()

	profile, err := env.users.PublicProfile(ctx, "author")
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuide, profile.Role)
	require.Len(t, profile.Posts, 1)

	_, err = env.users.PublicProfile(ctx, "nobody")
	assertCode(t, err, models.CodeNotFound)
}

func TestUserService_DeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceActor := env.user(t, "alice", models.RoleBlocked)
	_, dev := env.user(t, "dev", models.RoleDeveloper)
	ctx := context.Background()

	assertCode(t, env.users.DeleteAccount(ctx, nil), models.CodeUnauthenticated)
	assertCode(t, env.users.DeleteAccount(ctx, dev), models.CodeForbidden)
	require.NoError(t, env.users.DeleteAccount(ctx, aliceActor))

	_, err := env.users.GetUser(ctx, alice.ID)
	assertCode(t, err, models.CodeNotFound)
}
