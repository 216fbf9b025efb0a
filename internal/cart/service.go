package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/pkg/db/models"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
)

// Service keeps the cart in step with checkout.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	RemoveProducts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, productIDs []uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

// RemoveProducts drops every cart item of the purchased products and
// recomputes the cart total. A user without a cart is a no-op.
func (s *service) RemoveProducts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, productIDs []uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required to update cart")
	}
	repo := s.repo.WithTx(tx)
	cart, err := repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if _, err := repo.DeleteItemsByProducts(ctx, cart.ID, productIDs); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart items")
	}
	total, err := repo.SumItems(ctx, cart.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum cart items")
	}
	if err := repo.UpdateTotal(ctx, cart.ID, total); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart total")
	}
	return nil
}
