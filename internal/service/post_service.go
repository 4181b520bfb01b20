package service

import (
	"context"
	"fmt"

	"agora/internal/authz"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"
)

const (
	postsPerPage    = 20
	profilePostsMax = 10
)

// PostService handles categories, posts and pinning.
type PostService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	reactions  repository.ReactionRepository
}

type ListPostsInput struct {
	CategorySlug string
	Page         int
	Limit        int
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts []models.Post `json:"posts"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type CreatePostInput struct {
	CategoryID uint   `json:"categoryId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

type UpdatePostInput struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID *uint  `json:"categoryId,omitempty"`
}

func NewPostService(
	posts repository.PostRepository,
	categories repository.CategoryRepository,
	reactions repository.ReactionRepository,
) *PostService {
	return &PostService{posts: posts, categories: categories, reactions: reactions}
}

func (s *PostService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// ListPosts returns one page of posts, pinned first, newest first.
func (s *PostService) ListPosts(ctx context.Context, viewer *models.Actor, in ListPostsInput) (*PostPage, error) {
	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = postsPerPage
	}
	page := in.Page
	if page < 1 {
		page = 1
	}
	if in.CategorySlug != "" {
		if _, err := s.categories.GetBySlug(ctx, in.CategorySlug); err != nil {
			return nil, err
		}
	}

	posts, total, err := s.posts.List(ctx, repository.PostFilter{
		CategorySlug: in.CategorySlug,
		Limit:        limit,
		Offset:       (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	if err := s.attachReactions(ctx, viewer, posts); err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Total: total, Page: page, Limit: limit}, nil
}

// RecentByAuthor lists the latest posts of a user for their profile.
func (s *PostService) RecentByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	posts, _, err := s.posts.List(ctx, repository.PostFilter{AuthorID: authorID, Limit: profilePostsMax})
	return posts, err
}

// GetPost returns a post and counts the view.
func (s *PostService) GetPost(ctx context.Context, viewer *models.Actor, id uint) (*models.Post, error) {
	if err := s.posts.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	one := []models.Post{*post}
	if err := s.attachReactions(ctx, viewer, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (s *PostService) attachReactions(ctx context.Context, viewer *models.Actor, posts []models.Post) error {
	if viewer == nil || len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	kinds, err := s.reactions.KindsFor(ctx, viewer.ID, models.TargetPost, ids)
	if err != nil {
		return err
	}
	for i := range posts {
		posts[i].UserReaction = kinds[posts[i].ID]
	}
	return nil
}

// CreatePost publishes a post in a category the actor may write to.
func (s *PostService) CreatePost(ctx context.Context, actor *models.Actor, in CreatePostInput, ip string) (*models.Post, error) {
	if err := authz.RequireWrite(actor, models.RoleNormal); err != nil {
		return nil, err
	}
	title, err := validation.ValidateText("Title", in.Title, validation.TitleMax)
	if err != nil {
		return nil, err
	}
	content, err := validation.ValidateText("Content", in.Content, validation.PostContentMax)
	if err != nil {
		return nil, err
	}
	if in.CategoryID == 0 {
		return nil, models.NewValidationError("categoryId is required")
	}
	category, err := s.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireWrite(actor, category.MinRole); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:      title,
		Content:    content,
		AuthorID:   actor.ID,
		CategoryID: category.ID,
	}
	var audit *models.AdminLog
	if authz.CanModerate(actor) {
		audit = newAudit(actor, models.ActionCreatePost, models.TargetPost, 0, fmt.Sprintf("Created post %q in %s", title, category.Slug), ip)
	}
	if err := s.posts.Create(ctx, post, audit); err != nil {
		return nil, err
	}
	recordAudit(audit)
	return s.posts.GetByID(ctx, post.ID)
}

// UpdatePost edits a post as its author or a moderator.
func (s *PostService) UpdatePost(ctx context.Context, actor *models.Actor, id uint, in UpdatePostInput, ip string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnerOrModerator(actor, post.AuthorID); err != nil {
		return nil, err
	}
	title, err := validation.ValidateText("Title", in.Title, validation.TitleMax)
	if err != nil {
		return nil, err
	}
	content, err := validation.ValidateText("Content", in.Content, validation.PostContentMax)
	if err != nil {
		return nil, err
	}

	updated := &models.Post{ID: post.ID, Title: title, Content: content, CategoryID: post.CategoryID}
	if in.CategoryID != nil && *in.CategoryID != post.CategoryID {
		category, err := s.categories.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if err := authz.RequireWrite(actor, category.MinRole); err != nil {
			return nil, err
		}
		updated.CategoryID = category.ID
	}

	var audit *models.AdminLog
	if actor.ID != post.AuthorID {
		audit = newAudit(actor, models.ActionEditPost, models.TargetPost, post.ID, fmt.Sprintf("Edited post %q by %s", post.Title, post.AuthorUsername), ip)
	}
	if err := s.posts.Update(ctx, updated, audit); err != nil {
		return nil, err
	}
	recordAudit(audit)
	return s.posts.GetByID(ctx, post.ID)
}

// DeletePost removes a post with its comments and reactions.
func (s *PostService) DeletePost(ctx context.Context, actor *models.Actor, id uint, ip string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnerOrModerator(actor, post.AuthorID); err != nil {
		return err
	}
	var audit *models.AdminLog
	if authz.CanModerate(actor) {
		audit = newAudit(actor, models.ActionDeletePost, models.TargetPost, post.ID, fmt.Sprintf("Deleted post %q", post.Title), ip)
	}
	if err := s.posts.Delete(ctx, post.ID, audit); err != nil {
		return err
	}
	recordAudit(audit)
	return nil
}

// SetPinned pins or unpins a post. Admin and above only.
func (s *PostService) SetPinned(ctx context.Context, actor *models.Actor, id uint, pinned bool, ip string) error {
	if err := authz.RequireWrite(actor, models.RoleAdmin); err != nil {
		return err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	action := models.ActionUnpinPost
	if pinned {
		action = models.ActionPinPost
	}
	audit := newAudit(actor, action, models.TargetPost, post.ID, fmt.Sprintf("%s %q", action, post.Title), ip)
	if err := s.posts.SetPinned(ctx, post.ID, pinned, audit); err != nil {
		return err
	}
	recordAudit(audit)
	return nil
}

func newAudit(actor *models.Actor, action string, targetType models.TargetType, targetID uint, details, ip string) *models.AdminLog {
	adminID := actor.ID
	return &models.AdminLog{
		AdminID:    &adminID,
		Action:     action,
		TargetType: string(targetType),
		TargetID:   targetID,
		Details:    details,
		IPAddress:  ip,
	}
}

func recordAudit(audit *models.AdminLog) {
	if audit != nil {
		observability.AdminActions.WithLabelValues(audit.Action).Inc()
	}
}
