package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type publishedEvent struct {
	UserID  uint
	Type    string
	Payload any
}

// recordingPublisher captures live events instead of sending them.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishUser(_ context.Context, userID uint, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Type: eventType, Payload: payload})
	return p.err
}

func (p *recordingPublisher) forUser(userID uint) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	db            *gorm.DB
	publisher     *recordingPublisher
	notifications *NotificationService
	reactions     *ReactionService
	posts         *PostService
	comments      *CommentService
	users         *UserService
	admin         *AdminService
	category      *models.Category
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	pub := &recordingPublisher{}

	userRepo := repository.NewUserRepository(db, nil)
	postRepo := repository.NewPostRepository(db)
	categoryRepo := repository.NewCategoryRepository(db, nil)
	reactionRepo := repository.NewReactionRepository(db)

	notifications := NewNotificationService(repository.NewNotificationRepository(db), pub, nil)
	posts := NewPostService(postRepo, categoryRepo, reactionRepo)
	return &testEnv{
		db:            db,
		publisher:     pub,
		notifications: notifications,
		reactions:     NewReactionService(reactionRepo, notifications),
		posts:         posts,
		comments:      NewCommentService(repository.NewCommentRepository(db), postRepo, reactionRepo, notifications),
		users:         NewUserService(userRepo, posts).WithHashCost(bcrypt.MinCost),
		admin:         NewAdminService(userRepo, repository.NewAdminLogRepository(db), nil),
		category:      testutil.CreateCategory(t, db, "free"),
	}
}

func (e *testEnv) user(t *testing.T, name string, role models.Role) (*models.User, *models.Actor) {
	t.Helper()
	u := testutil.CreateUser(t, e.db, name, role)
	return u, u.Actor()
}

func (e *testEnv) notificationsOf(t *testing.T, userID uint) []models.Notification {
	t.Helper()
	list, err := e.notifications.List(context.Background(), userID)
	require.NoError(t, err)
	return list
}

func (e *testEnv) adminLogs(t *testing.T) []models.AdminLog {
	t.Helper()
	var logs []models.AdminLog
	require.NoError(t, e.db.Order("id").Find(&logs).Error)
	return logs
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
}

func createPost(t *testing.T, e *testEnv, author *models.User) *models.Post {
	t.Helper()
	return testutil.CreatePost(t, e.db, author, e.category, "hello")
}

func createComment(t *testing.T, e *testEnv, author *models.User, post *models.Post) *models.Comment {
	t.Helper()
	return testutil.CreateComment(t, e.db, author, post, nil)
}
