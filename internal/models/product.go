package models

import (
	"time"

	"gorm.io/datatypes"
)

// PlaceholderImage is served when a product has no uploaded images.
const PlaceholderImage = "/images/placeholder.jpg"

// Product is a catalog item. Images holds processed image URLs as a JSON
// array; soft deletion keeps rows for order history while hiding them from
// the storefront.
type Product struct {
	BaseModel

	Name        string  `gorm:"not null;index" json:"name"`
	Description string  `gorm:"not null" json:"description"`
	Price       float64 `gorm:"not null;index" json:"price"`
	Stock       int     `gorm:"not null;default:0" json:"stock"`

	CategoryID string    `gorm:"type:uuid;not null;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Brand  string                      `gorm:"not null;index" json:"brand"`
	Images datatypes.JSONSlice[string] `json:"images"`

	Status    bool       `gorm:"default:true" json:"status"`
	IsDeleted bool       `gorm:"default:false;index" json:"-"`
	DeletedAt *time.Time `json:"-"`

	Rating      float64 `gorm:"default:0" json:"rating"`
	ReviewCount int     `gorm:"default:0" json:"review_count"`
}

// ImageURL returns the primary image, falling back to the placeholder.
func (p *Product) ImageURL() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return PlaceholderImage
}

// Visible reports whether the product should appear on the storefront.
func (p *Product) Visible() bool {
	return p.Status && !p.IsDeleted
}
