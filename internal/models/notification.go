package models

import "time"

// NotificationType classifies why a notification was sent.
type NotificationType string

const (
	NotificationComment NotificationType = "comment"
	NotificationReply   NotificationType = "reply"
	NotificationLike    NotificationType = "like"
	NotificationDislike NotificationType = "dislike"
)

// Notification is a per-recipient message about activity on their content.
type Notification struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"not null;index:idx_notifications_user_read,priority:1" json:"user_id"`
	User       *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ActorID    *uint            `gorm:"index" json:"actor_id,omitempty"`
	Actor      *User            `gorm:"foreignKey:ActorID;constraint:OnDelete:SET NULL" json:"-"`
	Type       NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Message    string           `gorm:"type:text;not null" json:"message"`
	TargetType TargetType       `gorm:"type:varchar(20)" json:"target_type,omitempty"`
	TargetID   *uint            `json:"target_id,omitempty"`
	IsRead     bool             `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2" json:"is_read"`
	CreatedAt  time.Time        `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}
