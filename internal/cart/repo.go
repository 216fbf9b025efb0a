package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/internal/repo"
	"github.com/albin6/cellsphere/pkg/db/models"
)

// Repository persists the customer's cart.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	DeleteItemsByProducts(ctx context.Context, cartID uuid.UUID, productIDs []uuid.UUID) (int64, error)
	SumItems(ctx context.Context, cartID uuid.UUID) (decimal.Decimal, error)
	UpdateTotal(ctx context.Context, cartID uuid.UUID, total decimal.Decimal) error
}

type repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.base.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) DeleteItemsByProducts(ctx context.Context, cartID uuid.UUID, productIDs []uuid.UUID) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	res := r.base.DB(ctx).
		Where("cart_id = ? AND product_id IN ?", cartID, productIDs).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *repository) SumItems(ctx context.Context, cartID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.base.DB(ctx).
		Model(&models.CartItem{}).
		Select("SUM(total_price)").
		Where("cart_id = ?", cartID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *repository) UpdateTotal(ctx context.Context, cartID uuid.UUID, total decimal.Decimal) error {
	return r.base.DB(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("total_amount", total).Error
}
