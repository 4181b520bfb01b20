// Package models contains data structures for the forum's domain models.
package models

import "time"

// Post represents a topic in a category.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	Author     *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
	Likes      int       `gorm:"not null;default:0" json:"likes"`
	Dislikes   int       `gorm:"not null;default:0" json:"dislikes"`
	ViewCount  int       `gorm:"not null;default:0" json:"view_count"`
	IsPinned   bool      `gorm:"not null;default:false;index" json:"is_pinned"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Joined from users and categories when listing; never persisted.
	AuthorUsername string `gorm:"->;-:migration" json:"author_username,omitempty"`
	AuthorRole     Role   `gorm:"->;-:migration" json:"author_role,omitempty"`
	AuthorAvatar   string `gorm:"->;-:migration" json:"author_avatar,omitempty"`
	CategoryName   string `gorm:"->;-:migration" json:"category_name,omitempty"`
	CategorySlug   string `gorm:"->;-:migration" json:"category_slug,omitempty"`
	CategoryIcon   string `gorm:"->;-:migration" json:"category_icon,omitempty"`
	CommentCount   int    `gorm:"->;-:migration" json:"comment_count"`
	// UserReaction is the requesting user's reaction, filled by the service.
	UserReaction ReactionKind `gorm:"-" json:"user_reaction,omitempty"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}
