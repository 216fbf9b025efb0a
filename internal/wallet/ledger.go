package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/albin6/cellsphere/internal/repo"
	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
)

// Ledger owns wallet balances and their append-only transaction log. Every
// balance change is paired with the transaction row that explains it.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID *uuid.UUID) (*models.Wallet, error)
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, status enums.TransactionStatus, orderID *uuid.UUID) (*models.Wallet, error)
	Details(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	CompletedSum(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error)
}

type ledger struct {
	base repo.Base
	now  func() time.Time
}

// NewLedger builds a wallet ledger bound to db.
func NewLedger(db *gorm.DB) Ledger {
	return &ledger{base: repo.NewBase(db), now: time.Now}
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	return &ledger{base: l.base.WithTx(tx), now: l.now}
}

// GetOrCreate returns the user's wallet, creating an empty one on first use.
func (l *ledger) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	db := l.base.DB(ctx)

	var wallet models.Wallet
	err := db.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !repo.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}

	wallet = models.Wallet{UserID: userID, Balance: decimal.Zero}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&wallet).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wallet")
	}

	// a concurrent request may have won the insert
	var stored models.Wallet
	if err := db.Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload wallet")
	}
	return &stored, nil
}

// Debit removes amount iff the balance covers it and records a completed
// debit with a negative amount.
func (l *ledger) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID *uuid.UUID) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}
	wallet, err := l.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	db := l.base.DB(ctx)
	res := db.Model(&models.Wallet{}).
		Where("id = ? AND balance >= ?", wallet.ID, amount).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": l.now().UTC(),
		})
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "debit wallet")
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient balance in your wallet").
			WithDetails(map[string]any{
				"balance":  wallet.Balance.StringFixed(2),
				"required": amount.StringFixed(2),
			})
	}

	if err := l.appendTransaction(ctx, wallet.ID, orderID, enums.TransactionDebit, enums.TransactionCompleted, amount.Neg()); err != nil {
		return nil, err
	}
	return l.reload(ctx, wallet.ID)
}

// Credit always records the transaction; only completed credits move the balance.
func (l *ledger) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, status enums.TransactionStatus, orderID *uuid.UUID) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid transaction status %q", status)
	}
	wallet, err := l.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := l.appendTransaction(ctx, wallet.ID, orderID, enums.TransactionCredit, status, amount); err != nil {
		return nil, err
	}
	if status == enums.TransactionCompleted {
		err := l.base.DB(ctx).Model(&models.Wallet{}).
			Where("id = ?", wallet.ID).
			Updates(map[string]any{
				"balance":    gorm.Expr("balance + ?", amount),
				"updated_at": l.now().UTC(),
			}).Error
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit wallet")
		}
	}
	return l.reload(ctx, wallet.ID)
}

// Details returns the wallet with its transactions, newest first.
func (l *ledger) Details(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	wallet, err := l.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	var detailed models.Wallet
	err = l.base.DB(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("transaction_date DESC")
		}).
		Where("id = ?", wallet.ID).
		First(&detailed).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet transactions")
	}
	return &detailed, nil
}

func (l *ledger) CompletedSum(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := l.base.DB(ctx).
		Model(&models.WalletTransaction{}).
		Select("SUM(amount)").
		Where("wallet_id = ? AND transaction_status = ?", walletID, enums.TransactionCompleted).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum wallet transactions")
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (l *ledger) appendTransaction(ctx context.Context, walletID uuid.UUID, orderID *uuid.UUID, kind enums.TransactionType, status enums.TransactionStatus, amount decimal.Decimal) error {
	txn := models.WalletTransaction{
		WalletID:          walletID,
		OrderID:           orderID,
		TransactionDate:   l.now().UTC(),
		TransactionType:   kind,
		TransactionStatus: status,
		Amount:            amount,
	}
	if err := l.base.DB(ctx).Create(&txn).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append wallet transaction")
	}
	return nil
}

func (l *ledger) reload(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := l.base.DB(ctx).Where("id = ?", walletID).First(&wallet).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload wallet")
	}
	return &wallet, nil
}
