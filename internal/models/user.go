package models

import "time"

// Theme is a UI theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeIng   Theme = "ing"
)

// CustomColors holds a user's palette overrides, stored as JSON.
type CustomColors struct {
	Primary   string `json:"primary,omitempty" validate:"omitempty,hexcolor"`
	Secondary string `json:"secondary,omitempty" validate:"omitempty,hexcolor"`
	Accent    string `json:"accent,omitempty" validate:"omitempty,hexcolor"`
}

// User represents a forum account.
type User struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	Username          string       `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email             string       `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password          string       `gorm:"not null" json:"-"`
	Role              Role         `gorm:"type:varchar(20);not null;default:'normal';index" json:"role"`
	Bio               string       `gorm:"type:text" json:"bio"`
	AvatarURL         string       `gorm:"size:500" json:"avatar_url"`
	ThemePreference   Theme        `gorm:"type:varchar(20);not null;default:'light'" json:"theme_preference"`
	CustomColors      CustomColors `gorm:"type:text;serializer:json" json:"custom_colors"`
	NotificationCount int          `gorm:"not null;default:0" json:"notification_count"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// Actor returns the identity used by authorization checks.
func (u *User) Actor() *Actor {
	if u == nil {
		return nil
	}
	return &Actor{ID: u.ID, Role: u.Role, Username: u.Username}
}

// Actor is an authenticated caller as seen by authorization checks.
type Actor struct {
	ID       uint
	Role     Role
	Username string
}

// PublicProfile is what other users may see about an account.
type PublicProfile struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	Posts     []Post    `json:"posts"`
}
