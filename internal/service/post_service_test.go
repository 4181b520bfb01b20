package service

import (
	"context"
	"strings"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guideCategory(t *testing.T, env *testEnv) *models.Category {
	t.Helper()
	c := &models.Category{Name: "Guides", Slug: "info", MinRole: models.RoleGuide}
	require.NoError(t, env.db.Create(c).Error)
	return c
}

func TestPostService_CreatePostRoleGate(t *testing.T) {
	env := newTestEnv(t)
	info := guideCategory(t, env)
	_, normal := env.user(t, "normal", models.RoleNormal)
	_, guide := env.user(t, "guide", models.RoleGuide)
	_, blocked := env.user(t, "blocked", models.RoleBlocked)
	ctx := context.Background()

	tests := []struct {
		name     string
		actor    *models.Actor
		category uint
		code     string
	}{
		{"anonymous", nil, env.category.ID, models.CodeUnauthenticated},
		{"blocked in open category", blocked, env.category.ID, models.CodeForbidden},
		{"normal in open category", normal, env.category.ID, ""},
		{"normal in guide category", normal, info.ID, models.CodeForbidden},
		{"guide in guide category", guide, info.ID, ""},
		{"unknown category", guide, 999, models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := env.posts.CreatePost(ctx, tt.actor, CreatePostInput{
				CategoryID: tt.category, Title: "Title", Content: "Body",
			}, "10.0.0.1")
			if tt.code != "" {
				assertCode(t, err, tt.code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.actor.Username, post.AuthorUsername)
		})
	}
	assert.Empty(t, env.adminLogs(t), "non-moderators leave no audit trail")
}

func TestPostService_CreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.user(t, "alice", models.RoleNormal)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreatePostInput
	}{
		{"blank title", CreatePostInput{CategoryID: env.category.ID, Title: "   ", Content: "body"}},
		{"blank content", CreatePostInput{CategoryID: env.category.ID, Title: "t", Content: ""}},
		{"long title", CreatePostInput{CategoryID: env.category.ID, Title: strings.Repeat("a", 201), Content: "body"}},
		{"missing category", CreatePostInput{Title: "t", Content: "body"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.posts.CreatePost(ctx, alice, tt.in, "")
			assertCode(t, err, models.CodeValidation)
		})
	}
}

func TestPostService_AdminCreateIsAudited(t *testing.T) {
	env := newTestEnv(t)
	admin, actor := env.user(t, "root", models.RoleAdmin)

	post, err := env.posts.CreatePost(context.Background(), actor, CreatePostInput{
		CategoryID: env.category.ID, Title: "Rules", Content: "Be nice",
	}, "192.0.2.4")
	require.NoError(t, err)

	logs := env.adminLogs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionCreatePost, logs[0].Action)
	assert.Equal(t, post.ID, logs[0].TargetID)
	assert.Equal(t, "192.0.2.4", logs[0].IPAddress)
	require.NotNil(t, logs[0].AdminID)
	assert.Equal(t, admin.ID, *logs[0].AdminID)
}

func TestPostService_UpdatePost(t *testing.T) {
	env := newTestEnv(t)
	author, owner := env.user(t, "author", models.RoleNormal)
	_, other := env.user(t, "other", models.RoleNormal)
	_, admin := env.user(t, "admin", models.RoleAdmin)
	post := createPost(t, env, author)
	ctx := context.Background()

	_, err := env.posts.UpdatePost(ctx, other, post.ID, UpdatePostInput{Title: "x", Content: "y"}, "")
	assertCode(t, err, models.CodeForbidden)

	updated, err := env.posts.UpdatePost(ctx, owner, post.ID, UpdatePostInput{Title: "New", Content: "Text"}, "")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Empty(t, env.adminLogs(t))

	_, err = env.posts.UpdatePost(ctx, admin, post.ID, UpdatePostInput{Title: "Moderated", Content: "Text"}, "198.51.100.7")
	require.NoError(t, err)
	logs := env.adminLogs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionEditPost, logs[0].Action)
	assert.Equal(t, "198.51.100.7", logs[0].IPAddress)

	info := guideCategory(t, env)
	_, err = env.posts.UpdatePost(ctx, owner, post.ID, UpdatePostInput{Title: "Move", Content: "Text", CategoryID: &info.ID}, "")
	assertCode(t, err, models.CodeForbidden)

	_, err = env.posts.UpdatePost(ctx, owner, 999, UpdatePostInput{Title: "x", Content: "y"}, "")
	assertCode(t, err, models.CodeNotFound)
}

func TestPostService_DeletePost(t *testing.T) {
	env := newTestEnv(t)
	author, owner := env.user(t, "author", models.RoleNormal)
	_, other := env.user(t, "other", models.RoleGuide)
	_, dev := env.user(t, "dev", models.RoleDeveloper)
	ctx := context.Background()

	first := createPost(t, env, author)
	assertCode(t, env.posts.DeletePost(ctx, other, first.ID, ""), models.CodeForbidden)
	require.NoError(t, env.posts.DeletePost(ctx, owner, first.ID, ""))
	assert.Empty(t, env.adminLogs(t))

	second := createPost(t, env, author)
	require.NoError(t, env.posts.DeletePost(ctx, dev, second.ID, "203.0.113.9"))
	logs := env.adminLogs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionDeletePost, logs[0].Action)
	assert.Equal(t, second.ID, logs[0].TargetID)

	assertCode(t, env.posts.DeletePost(ctx, dev, second.ID, ""), models.CodeNotFound)
}

func TestPostService_SetPinned(t *testing.T) {
	env := newTestEnv(t)
	author, owner := env.user(t, "author", models.RoleGuide)
	_, admin := env.user(t, "admin", models.RoleAdmin)
	older := createPost(t, env, author)
	createPost(t, env, author)
	ctx := context.Background()

	assertCode(t, env.posts.SetPinned(ctx, owner, older.ID, true, ""), models.CodeForbidden)
	require.NoError(t, env.posts.SetPinned(ctx, admin, older.ID, true, "127.0.0.1"))

	page, err := env.posts.ListPosts(ctx, nil, ListPostsInput{})
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, older.ID, page.Posts[0].ID)
	assert.True(t, page.Posts[0].IsPinned)

	require.NoError(t, env.posts.SetPinned(ctx, admin, older.ID, false, "127.0.0.1"))
	logs := env.adminLogs(t)
	require.Len(t, logs, 2)
	assert.Equal(t, models.ActionPinPost, logs[0].Action)
	assert.Equal(t, models.ActionUnpinPost, logs[1].Action)
}

func TestPostService_ListAndGet(t *testing.T) {
	env := newTestEnv(t)
	author, _ := env.user(t, "author", models.RoleNormal)
	_, viewer := env.user(t, "viewer", models.RoleNormal)
	post := createPost(t, env, author)
	ctx := context.Background()

	_, err := env.reactions.Submit(ctx, viewer, SubmitReactionInput{TargetType: "post", TargetID: post.ID, ReactionType: "dislike"})
	require.NoError(t, err)

	page, err := env.posts.ListPosts(ctx, viewer, ListPostsInput{CategorySlug: "free", Page: 1, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, postsPerPage, page.Limit)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, models.ReactionDislike, page.Posts[0].UserReaction)

	_, err = env.posts.ListPosts(ctx, nil, ListPostsInput{CategorySlug: "nope"})
	assertCode(t, err, models.CodeNotFound)

	got, err := env.posts.GetPost(ctx, nil, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ViewCount)
	assert.Empty(t, got.UserReaction)
	assert.Equal(t, "free", got.CategorySlug)

	_, err = env.posts.GetPost(ctx, nil, 999)
	assertCode(t, err, models.CodeNotFound)
}
