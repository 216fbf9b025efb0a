package offers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferInput is the admin create payload.
type OfferInput struct {
	Name       string          `json:"name" validate:"required,max=120"`
	Type       string          `json:"type" validate:"required"`
	Value      decimal.Decimal `json:"value"`
	Target     string          `json:"target" validate:"required"`
	TargetID   uuid.UUID       `json:"targetId" validate:"required"`
	TargetName string          `json:"targetName" validate:"required,max=120"`
	EndDate    time.Time       `json:"endDate" validate:"required"`
}
