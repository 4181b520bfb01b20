package service

import (
	"context"
	"fmt"

	"agora/internal/authz"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"
)

type CommentService struct {
	comments      repository.CommentRepository
	posts         repository.PostRepository
	reactions     repository.ReactionRepository
	notifications *NotificationService
}

type CreateCommentInput struct {
	PostID   uint   `json:"-"`
	ParentID *uint  `json:"parentId,omitempty"`
	Content  string `json:"content"`
}

// NewCommentService creates a CommentService. notifications may be nil.
func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	reactions repository.ReactionRepository,
	notifications *NotificationService,
) *CommentService {
	return &CommentService{
		comments:      comments,
		posts:         posts,
		reactions:     reactions,
		notifications: notifications,
	}
}

// ListComments returns a post's comments in thread order, with the viewer's
// own reactions filled in.
func (s *CommentService) ListComments(ctx context.Context, viewer *models.Actor, postID uint) ([]models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if viewer == nil || len(comments) == 0 {
		return comments, nil
	}
	ids := make([]uint, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
	}
	kinds, err := s.reactions.KindsFor(ctx, viewer.ID, models.TargetComment, ids)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		comments[i].UserReaction = kinds[comments[i].ID]
	}
	return comments, nil
}

// CreateComment adds a comment, optionally as a reply, and notifies the post
// author and the replied-to author. Comments by admins and developers are
// audited with ip.
func (s *CommentService) CreateComment(ctx context.Context, actor *models.Actor, in CreateCommentInput, ip string) (*models.Comment, error) {
	if err := authz.RequireWrite(actor, models.RoleNormal); err != nil {
		return nil, err
	}
	content, err := validation.ValidateText("Content", in.Content, validation.CommentContentMax)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	var parent *models.Comment
	if in.ParentID != nil {
		parent, err = s.comments.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, models.NewValidationError("Parent comment belongs to another post")
		}
	}

	comment := &models.Comment{
		Content:  content,
		AuthorID: actor.ID,
		PostID:   post.ID,
		ParentID: in.ParentID,
	}
	var audit *models.AdminLog
	if authz.CanModerate(actor) {
		audit = newAudit(actor, models.ActionCreateComment, models.TargetComment, 0, fmt.Sprintf("Commented on post %d by %s", post.ID, post.AuthorUsername), ip)
	}
	if err := s.comments.Create(ctx, comment, audit); err != nil {
		return nil, err
	}
	recordAudit(audit)

	name := actor.Username
	if name == "" {
		name = "Someone"
	}
	target := models.CommentTarget(comment.ID)
	s.notifications.EmitQuietly(ctx, EmitInput{
		RecipientID: post.AuthorID,
		ActorID:     actor.ID,
		Type:        models.NotificationComment,
		Message:     fmt.Sprintf("%s commented on your post %q", name, post.Title),
		Target:      &target,
	})
	if parent != nil && parent.AuthorID != post.AuthorID {
		s.notifications.EmitQuietly(ctx, EmitInput{
			RecipientID: parent.AuthorID,
			ActorID:     actor.ID,
			Type:        models.NotificationReply,
			Message:     fmt.Sprintf("%s replied to your comment", name),
			Target:      &target,
		})
	}

	return s.comments.GetByID(ctx, comment.ID)
}

// UpdateComment edits a comment as its author or a moderator.
func (s *CommentService) UpdateComment(ctx context.Context, actor *models.Actor, id uint, content, ip string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnerOrModerator(actor, comment.AuthorID); err != nil {
		return nil, err
	}
	content, err = validation.ValidateText("Content", content, validation.CommentContentMax)
	if err != nil {
		return nil, err
	}

	var audit *models.AdminLog
	if actor.ID != comment.AuthorID {
		audit = newAudit(actor, models.ActionEditComment, models.TargetComment, comment.ID, fmt.Sprintf("Edited comment by %s on post %d", comment.AuthorUsername, comment.PostID), ip)
	}
	if err := s.comments.UpdateContent(ctx, comment.ID, content, audit); err != nil {
		return nil, err
	}
	recordAudit(audit)
	return s.comments.GetByID(ctx, comment.ID)
}

// DeleteComment removes a comment; replies stay and lose their parent.
func (s *CommentService) DeleteComment(ctx context.Context, actor *models.Actor, id uint, ip string) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnerOrModerator(actor, comment.AuthorID); err != nil {
		return err
	}
	var audit *models.AdminLog
	if authz.CanModerate(actor) {
		audit = newAudit(actor, models.ActionDeleteComment, models.TargetComment, comment.ID, fmt.Sprintf("Deleted comment by %s on post %d", comment.AuthorUsername, comment.PostID), ip)
	}
	if err := s.comments.Delete(ctx, comment.ID, audit); err != nil {
		return err
	}
	recordAudit(audit)
	return nil
}
