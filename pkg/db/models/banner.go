package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Banner is a storefront hero slide. Image is a URL to an already hosted
// asset; nothing is uploaded through the API.
type Banner struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	HeadingOne  string     `gorm:"column:heading_one;not null;default:''" json:"heading_one"`
	HeadingFour string     `gorm:"column:heading_four;not null;default:''" json:"heading_four"`
	Description string     `gorm:"column:description;not null;default:''" json:"description"`
	Image       string     `gorm:"column:image;not null" json:"image"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true;index" json:"status"`
	ExpiresAt   *time.Time `gorm:"column:expires_at;index" json:"expires_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (b *Banner) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}
