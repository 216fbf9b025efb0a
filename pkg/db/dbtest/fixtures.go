package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/pkg/db/models"
)

// VariantSpec describes one variant to seed.
type VariantSpec struct {
	SKU   string
	Price string
	Stock int
}

// SeedCategory inserts an active category.
func SeedCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	category := models.Category{Name: name, IsActive: true}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return category
}

// SeedProduct inserts a product with the given offer discount percentage and variants.
func SeedProduct(t *testing.T, db *gorm.DB, name string, categoryID uuid.UUID, discount string, variants ...VariantSpec) models.Product {
	t.Helper()
	product := models.Product{
		Name:       name,
		CategoryID: categoryID,
		Brand:      "Generic",
		Discount:   decimal.RequireFromString(discount),
		IsActive:   true,
	}
	for _, v := range variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			SKU:   v.SKU,
			Price: decimal.RequireFromString(v.Price),
			Stock: v.Stock,
		})
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

// VariantStock reads the current stock of a variant.
func VariantStock(t *testing.T, db *gorm.DB, productID uuid.UUID, sku string) int {
	t.Helper()
	var variant models.ProductVariant
	if err := db.Where("product_id = ? AND sku = ?", productID, sku).First(&variant).Error; err != nil {
		t.Fatalf("load variant: %v", err)
	}
	return variant.Stock
}

// QuantitySold reads the product's quantity_sold counter.
func QuantitySold(t *testing.T, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var product models.Product
	if err := db.Select("quantity_sold").Where("id = ?", productID).First(&product).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return product.QuantitySold
}
