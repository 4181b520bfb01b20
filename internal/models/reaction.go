package models

import "time"

// Reaction is a single user's like or dislike on a post or comment. At most
// one row exists per (user, target type, target id).
type Reaction struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	UserID       uint         `gorm:"not null;uniqueIndex:idx_reactions_user_target,priority:1" json:"user_id"`
	User         *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TargetType   TargetType   `gorm:"type:varchar(20);not null;uniqueIndex:idx_reactions_user_target,priority:2;index:idx_reactions_target,priority:1" json:"target_type"`
	TargetID     uint         `gorm:"not null;uniqueIndex:idx_reactions_user_target,priority:3;index:idx_reactions_target,priority:2" json:"target_id"`
	ReactionType ReactionKind `gorm:"type:varchar(20);not null" json:"reaction_type"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Reaction) TableName() string {
	return "reactions"
}
