package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/pkg/enums"
)

// Offer records a discount written onto a product or every product of a
// category until EndDate.
type Offer struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	Name       string             `gorm:"column:name;not null" json:"name"`
	OfferType  enums.DiscountType `gorm:"column:offer_type;not null" json:"offer_type"`
	OfferValue decimal.Decimal    `gorm:"column:offer_value;type:numeric(12,2);not null" json:"offer_value"`
	TargetType enums.OfferTarget  `gorm:"column:target_type;not null" json:"target_type"`
	TargetID   uuid.UUID          `gorm:"column:target_id;type:uuid;not null;index" json:"target_id"`
	TargetName string             `gorm:"column:target_name;not null;default:''" json:"target_name"`
	EndDate    time.Time          `gorm:"column:end_date;not null;index" json:"end_date"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (o *Offer) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}
