package offers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/internal/products"
	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
	"github.com/albin6/cellsphere/pkg/logger"
	"github.com/albin6/cellsphere/pkg/validation"
)

const expiryBatchSize = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages catalog offers. An offer writes its value onto the
// discount percentage of its target products for as long as it exists.
type Service interface {
	Create(ctx context.Context, input OfferInput) (*models.Offer, error)
	List(ctx context.Context) ([]models.Offer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExpireDue(ctx context.Context) (int, error)
}

type ServiceParams struct {
	Repository Repository
	Catalog    products.Repository
	Tx         txRunner
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	repo     Repository
	catalog  products.Repository
	tx       txRunner
	logg     *logger.Logger
	now      func() time.Time
	validate *validator.Validate
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("offers repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	s := &service{
		repo:     params.Repository,
		catalog:  params.Catalog,
		tx:       params.Tx,
		logg:     params.Logger,
		now:      params.Now,
		validate: validation.New(),
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

func (s *service) Create(ctx context.Context, input OfferInput) (*models.Offer, error) {
	offer, err := s.offerFromInput(input)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.applyDiscount(ctx, s.catalog.WithTx(tx), offer.TargetType, offer.TargetID, offer.OfferValue); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Create(ctx, offer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create offer")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *service) List(ctx context.Context) ([]models.Offer, error) {
	offers, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}
	return offers, nil
}

// Delete removes the offer and clears the discount it wrote.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		offer, err := s.repo.WithTx(tx).FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Offer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
		}
		return s.retire(ctx, tx, offer)
	})
}

// ExpireDue retires every offer whose end date has passed. Each offer is
// retired in its own transaction so one bad target does not block the rest.
func (s *service) ExpireDue(ctx context.Context) (int, error) {
	due, err := s.repo.ListEndedBefore(ctx, s.now(), expiryBatchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired offers")
	}

	var errs error
	retired := 0
	for i := range due {
		offer := &due[i]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.retire(ctx, tx, offer)
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("offer %s: %w", offer.ID, err))
			continue
		}
		retired++
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"offer_id":    offer.ID.String(),
			"target_type": string(offer.TargetType),
			"target_id":   offer.TargetID.String(),
		}), "offer expired")
	}
	return retired, errs
}

func (s *service) retire(ctx context.Context, tx *gorm.DB, offer *models.Offer) error {
	catalog := s.catalog.WithTx(tx)
	var err error
	switch offer.TargetType {
	case enums.OfferTargetProduct:
		_, err = catalog.SetProductDiscount(ctx, offer.TargetID, decimal.Zero)
	case enums.OfferTargetCategory:
		_, err = catalog.SetCategoryDiscount(ctx, offer.TargetID, decimal.Zero)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset offer discount")
	}
	if _, err := s.repo.WithTx(tx).Delete(ctx, offer.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete offer")
	}
	return nil
}

func (s *service) applyDiscount(ctx context.Context, catalog products.Repository, target enums.OfferTarget, targetID uuid.UUID, value decimal.Decimal) error {
	switch target {
	case enums.OfferTargetProduct:
		ok, err := catalog.SetProductDiscount(ctx, targetID, value)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply product discount")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
	case enums.OfferTargetCategory:
		if _, err := catalog.FindCategory(ctx, targetID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
		if _, err := catalog.SetCategoryDiscount(ctx, targetID, value); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply category discount")
		}
	}
	return nil
}

func (s *service) offerFromInput(input OfferInput) (*models.Offer, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid offer")
	}
	kind, err := enums.ParseDiscountType(input.Type)
	if err != nil {
		return nil, invalidField("type", input.Type)
	}
	target, err := enums.ParseOfferTarget(input.Target)
	if err != nil {
		return nil, invalidField("target", input.Target)
	}
	// Product discounts are percentages regardless of the offer type.
	if !input.Value.IsPositive() || input.Value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer value must be between 0 and 100").
			WithDetails(map[string]any{"field": "value", "value": input.Value.String()})
	}
	if !input.EndDate.After(s.now()) {
		return nil, invalidField("endDate", input.EndDate.Format(time.RFC3339))
	}
	return &models.Offer{
		Name:       strings.TrimSpace(input.Name),
		OfferType:  kind,
		OfferValue: input.Value,
		TargetType: target,
		TargetID:   input.TargetID,
		TargetName: strings.TrimSpace(input.TargetName),
		EndDate:    input.EndDate.UTC(),
	}, nil
}

func invalidField(field, value string) error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid %s", field).
		WithDetails(map[string]any{"field": field, "value": value})
}
