package models

import "time"

// Admin log actions.
const (
	ActionChangeRole    = "change_role"
	ActionCreatePost    = "create_post"
	ActionEditPost      = "edit_post"
	ActionDeletePost    = "delete_post"
	ActionPinPost       = "pin_post"
	ActionUnpinPost     = "unpin_post"
	ActionCreateComment = "create_comment"
	ActionEditComment   = "edit_comment"
	ActionDeleteComment = "delete_comment"
)

// AdminLog is an append-only audit record of a privileged action.
type AdminLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AdminID    *uint     `gorm:"index" json:"admin_id"`
	Admin      *User     `gorm:"foreignKey:AdminID;constraint:OnDelete:SET NULL" json:"-"`
	Action     string    `gorm:"size:50;not null" json:"action"`
	TargetType string    `gorm:"size:20" json:"target_type"`
	TargetID   uint      `json:"target_id"`
	Details    string    `gorm:"type:text" json:"details"`
	IPAddress  string    `gorm:"size:64" json:"ip_address"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`

	AdminUsername string `gorm:"->;-:migration" json:"admin_username,omitempty"`
}

// TableName specifies the table name for GORM.
func (AdminLog) TableName() string {
	return "admin_logs"
}

// ForumStats is the aggregate counters shown on the admin dashboard.
type ForumStats struct {
	Users      int64 `json:"users"`
	Posts      int64 `json:"posts"`
	Comments   int64 `json:"comments"`
	Reactions  int64 `json:"reactions"`
	PostsToday int64 `json:"posts_today"`
}
