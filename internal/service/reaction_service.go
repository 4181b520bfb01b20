package service

import (
	"context"
	"fmt"

	"agora/internal/authz"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
)

// SubmitReactionInput is a raw like/dislike request.
type SubmitReactionInput struct {
	TargetType   string `json:"targetType"`
	TargetID     uint   `json:"targetId"`
	ReactionType string `json:"reactionType"`
}

// ReactionResult is the outcome of a toggle and the target's new counters.
type ReactionResult struct {
	Outcome  models.ReactionOutcome
	Current  models.ReactionKind
	Likes    int
	Dislikes int
}

// Message is the human readable confirmation for the outcome.
func (r *ReactionResult) Message() string {
	switch r.Outcome {
	case models.ReactionAdded:
		return "Reaction added"
	case models.ReactionRemoved:
		return "Reaction removed"
	default:
		return "Reaction changed"
	}
}

// ReactionService toggles likes and dislikes on posts and comments.
type ReactionService struct {
	reactions     repository.ReactionRepository
	notifications *NotificationService
}

// NewReactionService creates a ReactionService. notifications may be nil.
func NewReactionService(reactions repository.ReactionRepository, notifications *NotificationService) *ReactionService {
	return &ReactionService{reactions: reactions, notifications: notifications}
}

// Submit toggles actor's reaction on the target: a new kind is added, the
// same kind again removes it, and the other kind switches it. The owner of
// the target is notified of additions and switches.
func (s *ReactionService) Submit(ctx context.Context, actor *models.Actor, in SubmitReactionInput) (*ReactionResult, error) {
	if err := authz.RequireWrite(actor, models.RoleNormal); err != nil {
		return nil, err
	}
	kind, ok := models.ParseReactionKind(in.ReactionType)
	if !ok {
		return nil, models.NewValidationError("reactionType must be like or dislike")
	}
	targetType, ok := models.ParseTargetType(in.TargetType)
	if !ok {
		return nil, models.NewValidationError("targetType must be post or comment")
	}
	if in.TargetID == 0 {
		return nil, models.NewValidationError("targetId must be a positive integer")
	}

	target := models.Target{Type: targetType, ID: in.TargetID}
	toggled, err := s.reactions.Toggle(ctx, actor.ID, target, kind)
	if err != nil {
		return nil, err
	}
	observability.ReactionsTotal.WithLabelValues(string(targetType), string(toggled.Outcome)).Inc()

	if toggled.Outcome != models.ReactionRemoved {
		s.notifications.EmitQuietly(ctx, EmitInput{
			RecipientID: toggled.OwnerID,
			ActorID:     actor.ID,
			Type:        notificationTypeFor(kind),
			Message:     reactionMessage(actor, target, kind),
			Target:      &target,
		})
	}

	return &ReactionResult{
		Outcome:  toggled.Outcome,
		Current:  toggled.Current,
		Likes:    toggled.Likes,
		Dislikes: toggled.Dislikes,
	}, nil
}

func notificationTypeFor(kind models.ReactionKind) models.NotificationType {
	if kind == models.ReactionDislike {
		return models.NotificationDislike
	}
	return models.NotificationLike
}

func reactionMessage(actor *models.Actor, target models.Target, kind models.ReactionKind) string {
	name := actor.Username
	if name == "" {
		name = "Someone"
	}
	verb := "liked"
	if kind == models.ReactionDislike {
		verb = "disliked"
	}
	return fmt.Sprintf("%s %s your %s", name, verb, target.Type)
}
