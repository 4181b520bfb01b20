// Package service implements the forum's use cases on top of the
// repositories: authorization, validation, and side effects.
package service

import (
	"context"
	"log/slog"

	"agora/internal/cache"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/observability"
	"agora/internal/repository"
)

// Publisher pushes live events to a user's connected clients.
type Publisher interface {
	PublishUser(ctx context.Context, userID uint, eventType string, payload any) error
}

// NotificationService stores notifications and pushes them to recipients.
type NotificationService struct {
	repo      repository.NotificationRepository
	publisher Publisher
	cache     *cache.Store
}

// EmitInput describes one notification to deliver.
type EmitInput struct {
	RecipientID uint
	ActorID     uint
	Type        models.NotificationType
	Message     string
	Target      *models.Target
}

// NewNotificationService creates a NotificationService. publisher and store
// may be nil.
func NewNotificationService(repo repository.NotificationRepository, publisher Publisher, store *cache.Store) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher, cache: store}
}

// Emit stores a notification for the recipient. Nothing happens when the
// recipient is unknown or is the actor. The live push is best effort.
func (s *NotificationService) Emit(ctx context.Context, in EmitInput) (*models.Notification, error) {
	if in.RecipientID == 0 || in.RecipientID == in.ActorID {
		return nil, nil
	}

	n := &models.Notification{
		UserID:  in.RecipientID,
		Type:    in.Type,
		Message: in.Message,
	}
	if in.ActorID != 0 {
		actorID := in.ActorID
		n.ActorID = &actorID
	}
	if in.Target != nil {
		targetID := in.Target.ID
		n.TargetType = in.Target.Type
		n.TargetID = &targetID
	}

	if err := s.repo.Create(ctx, n); err != nil {
		observability.NotificationFailures.WithLabelValues("store").Inc()
		return nil, err
	}
	observability.NotificationsEmitted.WithLabelValues(string(in.Type)).Inc()
	s.cache.InvalidateUser(ctx, in.RecipientID)

	unread, err := s.repo.UnreadCount(ctx, in.RecipientID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "unread count failed", slog.String("error", err.Error()))
	}
	s.publish(ctx, in.RecipientID, notifications.EventNotificationCreated, map[string]any{
		"notification": n,
		"unread_count": unread,
	})
	return n, nil
}

// EmitQuietly is Emit for side effects of another operation: failures are
// logged and swallowed.
func (s *NotificationService) EmitQuietly(ctx context.Context, in EmitInput) {
	if s == nil {
		return
	}
	if _, err := s.Emit(ctx, in); err != nil {
		middleware.Logger.WarnContext(ctx, "notification not delivered",
			slog.Uint64("recipient_id", uint64(in.RecipientID)),
			slog.String("type", string(in.Type)),
			slog.String("error", err.Error()),
		)
	}
}

// List returns the newest notifications of userID.
func (s *NotificationService) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	return s.repo.ListForUser(ctx, userID)
}

// MarkRead marks ids read, or all of them when ids is empty, and returns the
// recomputed unread count.
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, ids []uint) (int64, error) {
	unread, err := s.repo.MarkRead(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	s.cache.InvalidateUser(ctx, userID)
	s.publish(ctx, userID, notifications.EventNotificationsRead, map[string]any{"unread_count": unread})
	return unread, nil
}

// UnreadCount counts unread notifications of userID.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *NotificationService) publish(ctx context.Context, userID uint, event string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishUser(ctx, userID, event, payload); err != nil {
		observability.NotificationFailures.WithLabelValues("publish").Inc()
		middleware.Logger.WarnContext(ctx, "realtime publish failed",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
