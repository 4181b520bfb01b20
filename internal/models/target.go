package models

import "strings"

// TargetType identifies the kind of entity a reaction or notification points at.
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// ParseTargetType validates a wire value.
func ParseTargetType(s string) (TargetType, bool) {
	switch t := TargetType(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetPost, TargetComment:
		return t, true
	}
	return "", false
}

// Target is a typed reference to a post or a comment.
type Target struct {
	Type TargetType
	ID   uint
}

// PostTarget references a post.
func PostTarget(id uint) Target { return Target{Type: TargetPost, ID: id} }

// CommentTarget references a comment.
func CommentTarget(id uint) Target { return Target{Type: TargetComment, ID: id} }

// ReactionKind is either a like or a dislike.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// ParseReactionKind validates a wire value.
func ParseReactionKind(s string) (ReactionKind, bool) {
	switch k := ReactionKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ReactionLike, ReactionDislike:
		return k, true
	}
	return "", false
}

// CounterColumn is the denormalized counter column this kind maintains on
// posts and comments.
func (k ReactionKind) CounterColumn() string {
	if k == ReactionDislike {
		return "dislikes"
	}
	return "likes"
}

// Opposite returns the other reaction kind.
func (k ReactionKind) Opposite() ReactionKind {
	if k == ReactionLike {
		return ReactionDislike
	}
	return ReactionLike
}

// ReactionOutcome describes what a toggle did.
type ReactionOutcome string

const (
	ReactionAdded   ReactionOutcome = "added"
	ReactionRemoved ReactionOutcome = "removed"
	ReactionChanged ReactionOutcome = "changed"
)
