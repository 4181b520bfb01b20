package service

import (
	"context"
	"testing"

	"agora/internal/models"
	"agora/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminService_ChangeRoleMatrix(t *testing.T) {
	env := newTestEnv(t)
	_, dev := env.user(t, "dev", models.RoleDeveloper)
	_, admin := env.user(t, "admin", models.RoleAdmin)
	_, guide := env.user(t, "guide", models.RoleGuide)
	_, blockedAdmin := env.user(t, "fallen", models.RoleBlocked)
	otherAdmin, _ := env.user(t, "admin2", models.RoleAdmin)
	member, _ := env.user(t, "member", models.RoleNormal)
	ctx := context.Background()

	tests := []struct {
		name   string
		actor  *models.Actor
		target uint
		role   string
		code   string
	}{
		{"anonymous", nil, member.ID, "guide", models.CodeUnauthenticated},
		{"guide cannot manage roles", guide, member.ID, "guide", models.CodeForbidden},
		{"blocked cannot manage roles", blockedAdmin, member.ID, "guide", models.CodeForbidden},
		{"unknown role", admin, member.ID, "owner", models.CodeValidation},
		{"missing user", admin, 999, "guide", models.CodeNotFound},
		{"self", admin, admin.ID, "normal", models.CodeForbidden},
		{"peer admin", admin, otherAdmin.ID, "normal", models.CodeForbidden},
		{"admin cannot grant admin", admin, member.ID, "admin", models.CodeForbidden},
		{"admin promotes to guide", admin, member.ID, "guide", ""},
		{"admin blocks", admin, member.ID, "blocked", ""},
		{"developer grants admin", dev, member.ID, "ADMIN", ""},
		{"developer demotes admin", dev, otherAdmin.ID, "normal", ""},
		{"developer cannot create developers", dev, otherAdmin.ID, "developer", models.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := env.admin.ChangeRole(ctx, tt.actor, tt.target, tt.role, "10.0.0.2")
			if tt.code != "" {
				assertCode(t, err, tt.code)
				return
			}
			require.NoError(t, err)
			want, _ := models.ParseRole(tt.role)
			assert.Equal(t, want, user.Role)
		})
	}

	logs := env.adminLogs(t)
	require.Len(t, logs, 4)
	for _, l := range logs {
		assert.Equal(t, models.ActionChangeRole, l.Action)
		assert.Equal(t, "10.0.0.2", l.IPAddress)
	}
	assert.Equal(t, "member: normal -> guide", logs[0].Details)
}

func TestAdminService_ListUsersMasksEmails(t *testing.T) {
	env := newTestEnv(t)
	_, dev := env.user(t, "dev", models.RoleDeveloper)
	_, admin := env.user(t, "admin", models.RoleAdmin)
	_, normal := env.user(t, "normal", models.RoleNormal)
	ctx := context.Background()

	_, err := env.admin.ListUsers(ctx, normal, repository.UserFilter{})
	assertCode(t, err, models.CodeForbidden)

	page, err := env.admin.ListUsers(ctx, admin, repository.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	for _, u := range page.Users {
		assert.Equal(t, maskedEmail, u.Email)
	}

	page, err = env.admin.ListUsers(ctx, dev, repository.UserFilter{Search: "norm"})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "normal@example.com", page.Users[0].Email)
}

func TestAdminService_SetRoleByEmail(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "founder", models.RoleNormal)
	ctx := context.Background()

	user, err := env.admin.SetRoleByEmail(ctx, "founder@example.com", "developer")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDeveloper, user.Role)

	logs := env.adminLogs(t)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].AdminID)
	assert.Equal(t, "local", logs[0].IPAddress)

	_, err = env.admin.SetRoleByEmail(ctx, "founder@example.com", "king")
	assertCode(t, err, models.CodeValidation)
	_, err = env.admin.SetRoleByEmail(ctx, "ghost@example.com", "normal")
	assertCode(t, err, models.CodeNotFound)
}

func TestAdminService_LogsAndStats(t *testing.T) {
	env := newTestEnv(t)
	author, _ := env.user(t, "author", models.RoleNormal)
	_, admin := env.user(t, "admin", models.RoleAdmin)
	_, guide := env.user(t, "guide", models.RoleGuide)
	post := createPost(t, env, author)
	createComment(t, env, author, post)
	ctx := context.Background()

	require.NoError(t, env.posts.SetPinned(ctx, admin, post.ID, true, "127.0.0.1"))

	_, err := env.admin.Logs(ctx, guide, 10, 0)
	assertCode(t, err, models.CodeForbidden)
	page, err := env.admin.Logs(ctx, admin, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, "admin", page.Logs[0].AdminUsername)

	_, err = env.admin.Stats(ctx, guide)
	assertCode(t, err, models.CodeForbidden)
	stats, err := env.admin.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Users)
	assert.Equal(t, int64(1), stats.Posts)
	assert.Equal(t, int64(1), stats.Comments)
	assert.Equal(t, int64(1), stats.PostsToday)
}
