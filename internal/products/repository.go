package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/internal/repo"
	"github.com/albin6/cellsphere/pkg/db/models"
)

// Repository exposes the catalog reads and discount writes used by orders and offers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindVariant(ctx context.Context, productID uuid.UUID, sku string) (*VariantInfo, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	BestSellers(ctx context.Context, limit int) ([]models.Product, error)
	SalesByCategory(ctx context.Context, limit int) ([]SalesTotal, error)
	SalesByBrand(ctx context.Context, limit int) ([]SalesTotal, error)
	SetProductDiscount(ctx context.Context, productID uuid.UUID, discount decimal.Decimal) (bool, error)
	SetCategoryDiscount(ctx context.Context, categoryID uuid.UUID, discount decimal.Decimal) (int64, error)
}

// VariantInfo is the flattened product + variant view consumed at checkout.
type VariantInfo struct {
	ProductID   uuid.UUID
	SKU         string
	ProductName string
	CategoryID  uuid.UUID
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Stock       int
	IsActive    bool
}

// SalesTotal is units sold summed over a category or brand.
type SalesTotal struct {
	Key          string `gorm:"column:group_key"`
	Name         string `gorm:"column:name"`
	QuantitySold int64  `gorm:"column:quantity_sold"`
}

// DiscountedPrice is the unit price after the product's offer percentage.
func (v VariantInfo) DiscountedPrice() decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return v.Price.Mul(hundred.Sub(v.Discount)).Div(hundred).Round(2)
}

type repository struct {
	base repo.Base
}

// NewRepository builds a catalog repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) FindVariant(ctx context.Context, productID uuid.UUID, sku string) (*VariantInfo, error) {
	var info VariantInfo
	err := r.base.DB(ctx).
		Table("product_variants AS v").
		Select(`p.id AS product_id, v.sku AS sku, p.name AS product_name, p.category_id AS category_id,
			v.price AS price, p.discount AS discount, v.stock AS stock, p.is_active AS is_active`).
		Joins("JOIN products p ON p.id = v.product_id").
		Where("v.product_id = ? AND v.sku = ?", productID, sku).
		Take(&info).Error
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.base.DB(ctx).Preload("Variants").Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.base.DB(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) BestSellers(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.base.DB(ctx).
		Preload("Variants").
		Where("is_active = ?", true).
		Order("quantity_sold DESC").
		Order("name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// SalesByCategory totals units sold per category. Inactive products still
// count since their sales happened.
func (r *repository) SalesByCategory(ctx context.Context, limit int) ([]SalesTotal, error) {
	var totals []SalesTotal
	err := r.base.DB(ctx).
		Table("products AS p").
		Select("c.id AS group_key, c.name AS name, SUM(p.quantity_sold) AS quantity_sold").
		Joins("JOIN categories AS c ON c.id = p.category_id").
		Where("p.quantity_sold > 0").
		Group("c.id, c.name").
		Order("quantity_sold DESC").
		Order("c.name ASC").
		Limit(limit).
		Scan(&totals).Error
	return totals, err
}

func (r *repository) SalesByBrand(ctx context.Context, limit int) ([]SalesTotal, error) {
	var totals []SalesTotal
	err := r.base.DB(ctx).
		Table("products AS p").
		Select("p.brand AS group_key, p.brand AS name, SUM(p.quantity_sold) AS quantity_sold").
		Where("p.quantity_sold > 0 AND p.brand <> ''").
		Group("p.brand").
		Order("quantity_sold DESC").
		Order("p.brand ASC").
		Limit(limit).
		Scan(&totals).Error
	return totals, err
}

func (r *repository) SetProductDiscount(ctx context.Context, productID uuid.UUID, discount decimal.Decimal) (bool, error) {
	res := r.base.DB(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Update("discount", discount)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) SetCategoryDiscount(ctx context.Context, categoryID uuid.UUID, discount decimal.Decimal) (int64, error) {
	res := r.base.DB(ctx).Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Update("discount", discount)
	return res.RowsAffected, res.Error
}
