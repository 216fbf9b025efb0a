package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/internal/repo"
	"github.com/albin6/cellsphere/pkg/db/models"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
)

// VariantKey addresses one variant by its product and SKU.
type VariantKey struct {
	ProductID uuid.UUID
	SKU       string
}

func (k VariantKey) String() string {
	return fmt.Sprintf("%s/%s", k.ProductID, k.SKU)
}

// Line is a quantity requested against a variant.
type Line struct {
	Key      VariantKey
	Quantity int
}

// Ledger owns the per-variant stock counters and the parent product's
// quantity_sold counter.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	Check(ctx context.Context, lines []Line) error
	Reserve(ctx context.Context, key VariantKey, qty int) error
	Release(ctx context.Context, key VariantKey, qty int) error
	Stock(ctx context.Context, key VariantKey) (int, error)
}

type ledger struct {
	base repo.Base
}

// NewLedger builds a stock ledger bound to db.
func NewLedger(db *gorm.DB) Ledger {
	return &ledger{base: repo.NewBase(db)}
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	return &ledger{base: l.base.WithTx(tx)}
}

// Check verifies every line can be served without touching any counter.
func (l *ledger) Check(ctx context.Context, lines []Line) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		available, err := l.Stock(ctx, line.Key)
		if err != nil {
			return err
		}
		if available < line.Quantity {
			return insufficient(line.Key, line.Quantity, available)
		}
	}
	return nil
}

// Reserve decrements stock iff enough is available, in a single statement.
func (l *ledger) Reserve(ctx context.Context, key VariantKey, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	db := l.base.DB(ctx)
	res := db.Exec(`
		UPDATE product_variants
		SET stock = stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND sku = ? AND stock >= ?
	`, qty, key.ProductID, key.SKU, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve stock")
	}
	if res.RowsAffected == 0 {
		available, err := l.Stock(ctx, key)
		if err != nil {
			return err
		}
		return insufficient(key, qty, available)
	}

	if err := db.Exec(`
		UPDATE products
		SET quantity_sold = quantity_sold + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, key.ProductID).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment quantity sold")
	}
	return nil
}

// Release returns qty to the variant. Callers guarantee at most one release
// per cancelled or returned line.
func (l *ledger) Release(ctx context.Context, key VariantKey, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	db := l.base.DB(ctx)
	res := db.Exec(`
		UPDATE product_variants
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND sku = ?
	`, qty, key.ProductID, key.SKU)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release stock")
	}
	if res.RowsAffected == 0 {
		return variantNotFound(key)
	}

	if err := db.Exec(`
		UPDATE products
		SET quantity_sold = CASE WHEN quantity_sold >= ? THEN quantity_sold - ? ELSE 0 END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, qty, key.ProductID).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement quantity sold")
	}
	return nil
}

func (l *ledger) Stock(ctx context.Context, key VariantKey) (int, error) {
	var variant models.ProductVariant
	err := l.base.DB(ctx).
		Select("stock").
		Where("product_id = ? AND sku = ?", key.ProductID, key.SKU).
		First(&variant).Error
	if err != nil {
		if repo.IsNotFound(err) {
			return 0, variantNotFound(key)
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant stock")
	}
	return variant.Stock, nil
}

func insufficient(key VariantKey, requested, available int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock").
		WithDetails(map[string]any{
			"product":   key.ProductID.String(),
			"sku":       key.SKU,
			"requested": requested,
			"available": available,
		})
}

func variantNotFound(key VariantKey) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found").
		WithDetails(map[string]any{
			"product": key.ProductID.String(),
			"sku":     key.SKU,
		})
}
