package models

// Category groups posts. Writing into a category requires MinRole.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Slug        string `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:20" json:"icon"`
	MinRole     Role   `gorm:"type:varchar(20);not null;default:'normal'" json:"min_role"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`
}

// TableName specifies the table name for GORM.
func (Category) TableName() string {
	return "categories"
}
