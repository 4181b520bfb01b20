// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewDB returns a migrated, private in-memory SQLite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		Env:          "test",
		DBDriver:     database.DriverSQLite,
		SQLitePath:   fmt.Sprintf("file:agora_test_%d?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000", dbSeq.Add(1)),
		DBSchemaMode: database.SchemaModeAuto,
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// NewRedis starts a miniredis server and returns a client connected to it.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// CreateUser inserts a user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "$2a$10$invalidinvalidinvalidinvalidinvalidinvalidinvalidinv",
		Role:            role,
		ThemePreference: models.ThemeLight,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateCategory inserts a category open to normal users.
func CreateCategory(t *testing.T, db *gorm.DB, slug string) *models.Category {
	t.Helper()
	c := &models.Category{Name: slug, Slug: slug, MinRole: models.RoleNormal}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreatePost inserts a post by author in category.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, category *models.Category, title string) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, Content: title + " body", AuthorID: author.ID, CategoryID: category.ID}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateComment inserts a comment on post, optionally replying to parent.
func CreateComment(t *testing.T, db *gorm.DB, author *models.User, post *models.Post, parent *models.Comment) *models.Comment {
	t.Helper()
	c := &models.Comment{Content: "a comment", AuthorID: author.ID, PostID: post.ID}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	require.NoError(t, db.Create(c).Error)
	return c
}
