package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/internal/repo"
	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
)

// Repository persists sales report entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.SalesReportEntry) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.SalesReportEntry, error)
	PatchProductStatus(ctx context.Context, orderID uuid.UUID, match ProductMatch, status enums.OrderStatus) (int64, error)
	PatchFinalAmount(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) (int64, error)
	ListBetween(ctx context.Context, window Window) ([]models.SalesReportEntry, error)
}

// ProductMatch selects the breakdown rows a status patch applies to. An empty
// SKU matches every row of the product.
type ProductMatch struct {
	ProductID uuid.UUID
	SKU       string
}

// Window is a half-open order-date range; zero bounds are unbounded.
type Window struct {
	From time.Time
	To   time.Time
	// Inclusive makes To an inclusive bound.
	Inclusive bool
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

func (r *repository) Create(ctx context.Context, entry *models.SalesReportEntry) error {
	return r.base.DB(ctx).Create(entry).Error
}

func (r *repository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.SalesReportEntry, error) {
	var entry models.SalesReportEntry
	err := r.base.DB(ctx).
		Preload("Products").
		Where("order_id = ?", orderID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) PatchProductStatus(ctx context.Context, orderID uuid.UUID, match ProductMatch, status enums.OrderStatus) (int64, error) {
	db := r.base.DB(ctx)
	query := db.Model(&models.SalesReportProduct{}).
		Where("order_id = ? AND product_id = ?", orderID, match.ProductID)
	if match.SKU != "" {
		query = query.Where("sku = ?", match.SKU)
	}
	res := query.Update("delivery_status", status)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}
	err := db.Model(&models.SalesReportEntry{}).
		Where("order_id = ?", orderID).
		Updates(map[string]any{"delivery_status": status, "updated_at": time.Now().UTC()}).Error
	return res.RowsAffected, err
}

func (r *repository) PatchFinalAmount(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) (int64, error) {
	res := r.base.DB(ctx).Model(&models.SalesReportEntry{}).
		Where("order_id = ?", orderID).
		Updates(map[string]any{"final_amount": amount, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

func (r *repository) ListBetween(ctx context.Context, window Window) ([]models.SalesReportEntry, error) {
	query := r.base.DB(ctx).Preload("Products")
	if !window.From.IsZero() {
		query = query.Where("order_date >= ?", window.From)
	}
	if !window.To.IsZero() {
		if window.Inclusive {
			query = query.Where("order_date <= ?", window.To)
		} else {
			query = query.Where("order_date < ?", window.To)
		}
	}
	var entries []models.SalesReportEntry
	err := query.Order("order_date DESC").Find(&entries).Error
	return entries, err
}
