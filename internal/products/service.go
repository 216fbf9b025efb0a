package products

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/albin6/cellsphere/pkg/db/models"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
)

const (
	DefaultBestSellerLimit = 10
	MaxBestSellerLimit     = 50
)

// BestSeller is the storefront card for a top-selling product.
type BestSeller struct {
	ProductID    string          `json:"_id"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	QuantitySold int             `json:"quantity_sold"`
	Discount     decimal.Decimal `json:"discount"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
}

// SalesRank is one row of the best-selling categories or brands board.
type SalesRank struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	QuantitySold int64  `json:"quantity_sold"`
}

type Service interface {
	BestSellers(ctx context.Context, limit int) ([]BestSeller, error)
	TopCategories(ctx context.Context, limit int) ([]SalesRank, error)
	TopBrands(ctx context.Context, limit int) ([]SalesRank, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

// BestSellers ranks active products by units sold. The card price is the
// cheapest variant.
func (s *service) BestSellers(ctx context.Context, limit int) ([]BestSeller, error) {
	products, err := s.repo.BestSellers(ctx, clampLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load best sellers")
	}
	out := make([]BestSeller, 0, len(products))
	for _, p := range products {
		out = append(out, toBestSeller(p))
	}
	return out, nil
}

func toBestSeller(p models.Product) BestSeller {
	card := BestSeller{
		ProductID:    p.ID.String(),
		Name:         p.Name,
		Brand:        p.Brand,
		Category:     p.CategoryID.String(),
		QuantitySold: p.QuantitySold,
		Discount:     p.Discount,
		Price:        decimal.Zero,
	}
	for i, v := range p.Variants {
		if i == 0 || v.Price.LessThan(card.Price) {
			card.Price = v.Price
			if len(v.Images) > 0 {
				card.Image = v.Images[0]
			}
		}
	}
	return card
}

func (s *service) TopCategories(ctx context.Context, limit int) ([]SalesRank, error) {
	totals, err := s.repo.SalesByCategory(ctx, clampLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load best-selling categories")
	}
	return toRanks(totals), nil
}

func (s *service) TopBrands(ctx context.Context, limit int) ([]SalesRank, error) {
	totals, err := s.repo.SalesByBrand(ctx, clampLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load best-selling brands")
	}
	return toRanks(totals), nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultBestSellerLimit
	case limit > MaxBestSellerLimit:
		return MaxBestSellerLimit
	}
	return limit
}

func toRanks(totals []SalesTotal) []SalesRank {
	out := make([]SalesRank, 0, len(totals))
	for _, t := range totals {
		out = append(out, SalesRank{ID: t.Key, Name: t.Name, QuantitySold: t.QuantitySold})
	}
	return out
}
