package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/pkg/enums"
)

// Wallet is a customer's store-credit account. Balance must always equal the
// sum of its completed transactions.
type Wallet struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	UserID       uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user"`
	Balance      decimal.Decimal     `gorm:"column:balance;type:numeric(12,2);not null;default:0" json:"balance"`
	Transactions []WalletTransaction `gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE" json:"transactions"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (w *Wallet) BeforeCreate(*gorm.DB) error {
	assignID(&w.ID)
	return nil
}

// WalletTransaction is an append-only ledger row. Debits carry a negative amount.
type WalletTransaction struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	WalletID          uuid.UUID               `gorm:"column:wallet_id;type:uuid;not null;index" json:"-"`
	OrderID           *uuid.UUID              `gorm:"column:order_id;type:uuid" json:"order_id,omitempty"`
	TransactionDate   time.Time               `gorm:"column:transaction_date;not null" json:"transaction_date"`
	TransactionType   enums.TransactionType   `gorm:"column:transaction_type;not null" json:"transaction_type"`
	TransactionStatus enums.TransactionStatus `gorm:"column:transaction_status;not null" json:"transaction_status"`
	Amount            decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
}

func (t *WalletTransaction) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}
