package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"agora/internal/models"
	"agora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostLifecycle(t *testing.T) {
	ta := newTestApp(t)
	category := testutil.CreateCategory(t, ta.db, "free")
	_, token := ta.user(t, "writer", models.RoleNormal)

	status, body := ta.do(t, http.MethodPost, "/api/posts", token, map[string]any{
		"categoryId": category.ID, "title": "Hello", "content": "First post",
	})
	require.Equal(t, http.StatusCreated, status, body)
	postID := uint(body["id"].(float64))
	assert.Equal(t, "writer", body["author_username"])

	status, body = ta.do(t, http.MethodGet, "/api/posts?category=free", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])

	path := fmt.Sprintf("/api/posts/%d", postID)
	status, body = ta.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["view_count"])

	status, _ = ta.do(t, http.MethodPut, path, token, map[string]any{"title": "Edited", "content": "Body"})
	require.Equal(t, http.StatusOK, status)

	status, _ = ta.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = ta.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = ta.do(t, http.MethodGet, "/api/posts/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid ID", body["error"])
}

func TestBlockedActorIsRejectedOnWrites(t *testing.T) {
	ta := newTestApp(t)
	category := testutil.CreateCategory(t, ta.db, "free")
	author, _ := ta.user(t, "author", models.RoleNormal)
	post := testutil.CreatePost(t, ta.db, author, category, "open")
	_, blocked := ta.user(t, "troll", models.RoleBlocked)

	requests := []struct {
		name string
		path string
		body map[string]any
	}{
		{"post create", "/api/posts", map[string]any{"categoryId": category.ID, "title": "t", "content": "c"}},
		{"comment create", fmt.Sprintf("/api/posts/%d/comments", post.ID), map[string]any{"content": "c"}},
		{"reaction", "/api/reactions", map[string]any{"targetType": "post", "targetId": post.ID, "reactionType": "like"}},
		{"reaction with bad kind", "/api/reactions", map[string]any{"targetType": "post", "targetId": post.ID, "reactionType": "love"}},
	}
	for _, r := range requests {
		t.Run(r.name, func(t *testing.T) {
			status, body := ta.do(t, http.MethodPost, r.path, blocked, r.body)
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, models.CodeForbidden, body["code"])
		})
	}

	// Blocked accounts can still read.
	status, _ := ta.do(t, http.MethodGet, "/api/posts", blocked, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestReactionEndpoint(t *testing.T) {
	ta := newTestApp(t)
	category := testutil.CreateCategory(t, ta.db, "free")
	author, authorToken := ta.user(t, "author", models.RoleNormal)
	post := testutil.CreatePost(t, ta.db, author, category, "likeable")
	_, token := ta.user(t, "fan", models.RoleNormal)

	react := func(kind string) (int, map[string]any) {
		return ta.do(t, http.MethodPost, "/api/reactions", token, map[string]any{
			"targetType": "post", "targetId": post.ID, "reactionType": kind,
		})
	}

	status, body := react("like")
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["added"])
	assert.Equal(t, "Reaction added", body["message"])
	assert.Equal(t, float64(1), body["likes"])

	status, body = react("dislike")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["changed"])
	assert.Equal(t, float64(0), body["likes"])
	assert.Equal(t, float64(1), body["dislikes"])

	status, body = react("dislike")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["removed"])
	assert.Equal(t, float64(0), body["dislikes"])

	status, body = react("love")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, body["code"])

	status, _ = ta.do(t, http.MethodPost, "/api/reactions", "", map[string]any{
		"targetType": "post", "targetId": post.ID, "reactionType": "like",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ta.do(t, http.MethodPost, "/api/reactions", token, map[string]any{
		"targetType": "comment", "targetId": 4242, "reactionType": "like",
	})
	assert.Equal(t, http.StatusNotFound, status)

	// The author saw a like and a dislike; the removal is silent.
	status, raw := ta.doRaw(t, http.MethodGet, "/api/notifications", authorToken, nil)
	require.Equal(t, http.StatusOK, status)
	var list []models.Notification
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 2)
	assert.Equal(t, models.NotificationDislike, list[0].Type)
}

func TestNotificationEndpoints(t *testing.T) {
	ta := newTestApp(t)
	category := testutil.CreateCategory(t, ta.db, "free")
	author, authorToken := ta.user(t, "author", models.RoleNormal)
	post := testutil.CreatePost(t, ta.db, author, category, "discuss")
	_, readerToken := ta.user(t, "reader", models.RoleNormal)

	for i := 0; i < 2; i++ {
		status, body := ta.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID), readerToken, map[string]any{"content": "hi"})
		require.Equal(t, http.StatusCreated, status, body)
	}

	status, body := ta.do(t, http.MethodGet, "/api/notifications/unread-count", authorToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["unread_count"])

	status, raw := ta.doRaw(t, http.MethodGet, "/api/notifications", authorToken, nil)
	require.Equal(t, http.StatusOK, status)
	var list []models.Notification
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 2)

	status, body = ta.do(t, http.MethodPut, "/api/notifications/read", authorToken, map[string]any{"notificationIds": []uint{list[0].ID}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["unread_count"])

	status, body = ta.do(t, http.MethodPut, "/api/notifications/read", authorToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["unread_count"])

	status, body = ta.do(t, http.MethodGet, "/api/auth/me", authorToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["notification_count"])
}

func TestCommentEndpoints(t *testing.T) {
	ta := newTestApp(t)
	category := testutil.CreateCategory(t, ta.db, "free")
	author, _ := ta.user(t, "author", models.RoleNormal)
	post := testutil.CreatePost(t, ta.db, author, category, "thread")
	_, token := ta.user(t, "commenter", models.RoleNormal)
	_, otherToken := ta.user(t, "other", models.RoleNormal)

	status, body := ta.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID), token, map[string]any{"content": "root"})
	require.Equal(t, http.StatusCreated, status)
	rootID := uint(body["id"].(float64))

	status, body = ta.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID), otherToken, map[string]any{"content": "reply", "parentId": rootID})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(rootID), body["parent_id"])

	path := fmt.Sprintf("/api/comments/%d", rootID)
	status, _ = ta.do(t, http.MethodPut, path, otherToken, map[string]any{"content": "mine now"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = ta.do(t, http.MethodPut, path, token, map[string]any{"content": "edited"})
	assert.Equal(t, http.StatusOK, status)
	status, _ = ta.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, raw := ta.doRaw(t, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", post.ID), "", nil)
	require.Equal(t, http.StatusOK, status)
	var comments []models.Comment
	require.NoError(t, json.Unmarshal(raw, &comments))
	require.Len(t, comments, 1)
	assert.Nil(t, comments[0].ParentID)
}

func TestAdminEndpoints(t *testing.T) {
	ta := newTestApp(t)
	_, adminToken := ta.user(t, "admin", models.RoleAdmin)
	_, normalToken := ta.user(t, "normal", models.RoleNormal)
	target, _ := ta.user(t, "target", models.RoleNormal)
	admin := &models.User{}
	require.NoError(t, ta.db.Where("username = ?", "admin").First(admin).Error)

	status, _ := ta.do(t, http.MethodGet, "/api/admin/users", normalToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = ta.do(t, http.MethodGet, "/api/stats", normalToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := ta.do(t, http.MethodGet, "/api/admin/users?search=targ", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	users := body["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "***", users[0].(map[string]any)["email"])

	rolePath := fmt.Sprintf("/api/admin/users/%d/role", target.ID)
	tests := []struct {
		name   string
		path   string
		role   string
		status int
	}{
		{"unknown role", rolePath, "emperor", http.StatusBadRequest},
		{"missing role", rolePath, "", http.StatusBadRequest},
		{"grant admin as admin", rolePath, "admin", http.StatusForbidden},
		{"self", fmt.Sprintf("/api/admin/users/%d/role", admin.ID), "normal", http.StatusForbidden},
		{"promote", rolePath, "guide", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := ta.do(t, http.MethodPut, tt.path, adminToken, map[string]string{"role": tt.role})
			assert.Equal(t, tt.status, status)
		})
	}

	status, body = ta.do(t, http.MethodGet, "/api/admin/logs", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	logs := body["logs"].([]any)
	require.Len(t, logs, 1)
	entry := logs[0].(map[string]any)
	assert.Equal(t, models.ActionChangeRole, entry["action"])
	assert.Equal(t, "admin", entry["admin_username"])
	assert.NotEmpty(t, entry["ip_address"])

	status, body = ta.do(t, http.MethodGet, "/api/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), body["users"])
}

func TestPinEndpoint(t *testing.T) {
	ta := newTestApp(t)
	category := testutil.CreateCategory(t, ta.db, "notice")
	author, guideToken := ta.user(t, "guide", models.RoleGuide)
	_, adminToken := ta.user(t, "admin", models.RoleAdmin)
	post := testutil.CreatePost(t, ta.db, author, category, "announcement")
	path := fmt.Sprintf("/api/admin/posts/%d/pin", post.ID)

	status, _ := ta.do(t, http.MethodPut, path, guideToken, map[string]bool{"pinned": true})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := ta.do(t, http.MethodPut, path, adminToken, map[string]bool{"pinned": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["pinned"])

	status, body = ta.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["is_pinned"])
}

func TestUserEndpoints(t *testing.T) {
	ta := newTestApp(t)
	_, token := ta.user(t, "member", models.RoleNormal)

	status, body := ta.do(t, http.MethodPut, "/api/user/theme", token, map[string]any{"theme": "dark", "customColors": map[string]string{"primary": "#abcdef"}})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "dark", body["theme_preference"])

	status, _ = ta.do(t, http.MethodPut, "/api/user/theme", token, map[string]any{"theme": "purple"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = ta.do(t, http.MethodPut, "/api/users/profile", token, map[string]any{"bio": "hi there"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hi there", body["bio"])

	status, body = ta.do(t, http.MethodGet, "/api/users/member", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hi there", body["bio"])
	assert.NotContains(t, body, "email")

	status, _ = ta.do(t, http.MethodGet, "/api/users/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
