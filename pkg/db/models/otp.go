package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTP is a hashed one-time passcode. Rows older than the configured TTL are
// swept by the cron worker.
type OTP struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email     string    `gorm:"column:email;not null;index"`
	CodeHash  string    `gorm:"column:code_hash;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
}

func (o *OTP) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}
