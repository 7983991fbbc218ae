package models

import "time"

// Category groups products. Names are unique case-insensitively among
// non-deleted categories; deletion is a soft delete so products keep their
// reference.
type Category struct {
	BaseModel

	Name        string `gorm:"not null;index" json:"name"`
	Description string `json:"description"`

	Status    bool       `gorm:"default:true" json:"status"`
	IsDeleted bool       `gorm:"default:false;index" json:"-"`
	DeletedAt *time.Time `json:"-"`
}
