package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
	"github.com/albin6/cellsphere/pkg/outbox"
	"github.com/albin6/cellsphere/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Reconciliation compares a wallet's stored balance with its ledger.
type Reconciliation struct {
	WalletID   uuid.UUID       `json:"wallet_id"`
	UserID     uuid.UUID       `json:"user_id"`
	Balance    decimal.Decimal `json:"balance"`
	Computed   decimal.Decimal `json:"computed_balance"`
	Consistent bool            `json:"consistent"`
}

// Service exposes the customer and admin wallet operations.
type Service interface {
	Details(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	AddFunds(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.Wallet, error)
	Refund(ctx context.Context, tx *gorm.DB, userID, orderID uuid.UUID, amount decimal.Decimal) (*models.Wallet, error)
	Reconcile(ctx context.Context, userID uuid.UUID) (*Reconciliation, error)
}

type service struct {
	ledger Ledger
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds the wallet service.
func NewService(ledger Ledger, tx txRunner, outbox outboxPublisher) (Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("wallet ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{ledger: ledger, tx: tx, outbox: outbox}, nil
}

func (s *service) Details(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet *models.Wallet
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		wallet, err = s.ledger.WithTx(tx).Details(ctx, userID)
		return err
	})
	return wallet, err
}

func (s *service) AddFunds(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	var wallet *models.Wallet
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		wallet, err = s.credit(ctx, tx, userID, nil, amount)
		return err
	})
	return wallet, err
}

// Refund credits a completed refund inside the caller's transaction.
func (s *service) Refund(ctx context.Context, tx *gorm.DB, userID, orderID uuid.UUID, amount decimal.Decimal) (*models.Wallet, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for refund")
	}
	return s.credit(ctx, tx, userID, &orderID, amount)
}

func (s *service) Reconcile(ctx context.Context, userID uuid.UUID) (*Reconciliation, error) {
	var result *Reconciliation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ledger := s.ledger.WithTx(tx)
		wallet, err := ledger.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		computed, err := ledger.CompletedSum(ctx, wallet.ID)
		if err != nil {
			return err
		}
		result = &Reconciliation{
			WalletID:   wallet.ID,
			UserID:     wallet.UserID,
			Balance:    wallet.Balance,
			Computed:   computed,
			Consistent: wallet.Balance.Equal(computed),
		}
		return nil
	})
	return result, err
}

func (s *service) credit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID *uuid.UUID, amount decimal.Decimal) (*models.Wallet, error) {
	wallet, err := s.ledger.WithTx(tx).Credit(ctx, userID, amount, enums.TransactionCompleted, orderID)
	if err != nil {
		return nil, err
	}
	err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventWalletCredited,
		AggregateType: enums.AggregateWallet,
		AggregateID:   wallet.ID,
		Actor:         &outbox.ActorRef{UserID: userID},
		Data: payloads.WalletCreditedEvent{
			WalletID: wallet.ID,
			UserID:   userID,
			OrderID:  orderID,
			Amount:   amount,
			Status:   enums.TransactionCompleted,
			Balance:  wallet.Balance,
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit wallet credited")
	}
	return wallet, nil
}
