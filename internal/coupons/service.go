package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/internal/repo"
	dbpkg "github.com/albin6/cellsphere/pkg/db"
	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
	"github.com/albin6/cellsphere/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the coupon usage tracker plus admin coupon management.
type Service interface {
	Preview(ctx context.Context, userID uuid.UUID, lines []PreviewLine) ([]PreviewResult, error)
	ApplyToOrder(ctx context.Context, tx *gorm.DB, userID uuid.UUID, code string, lines []OrderLineAmount) (*Application, error)
	RecordUsage(ctx context.Context, tx *gorm.DB, couponID, userID uuid.UUID) error
	Create(ctx context.Context, input CouponInput) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, input CouponInput) (*models.Coupon, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	List(ctx context.Context, params pagination.Params, activeOnly bool) (*CouponList, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleActive(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
}

// ServiceParams wires the coupon service.
type ServiceParams struct {
	Repository Repository
	Tx         txRunner
	// ClampFixedToAmount caps fixed discounts at the line amount.
	ClampFixedToAmount bool
	Now                func() time.Time
}

type service struct {
	repo       Repository
	tx         txRunner
	clampFixed bool
	now        func() time.Time
}

// NewService builds the coupon service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:       params.Repository,
		tx:         params.Tx,
		clampFixed: params.ClampFixedToAmount,
		now:        now,
	}, nil
}

// Preview validates and prices every line independently. Usage is recorded
// once per call when at least one line is eligible, regardless of how many are.
func (s *service) Preview(ctx context.Context, userID uuid.UUID, lines []PreviewLine) ([]PreviewResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	code := lines[0].Code

	var results []PreviewResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		coupon, usage, err := s.loadForUser(ctx, repo, code, userID)
		if err != nil {
			return err
		}

		now := s.now()
		results = make([]PreviewResult, 0, len(lines))
		anyEligible := false
		for _, line := range lines {
			result := PreviewResult{
				CategoryID:         line.CategoryID,
				OriginalAmount:     line.Amount,
				DiscountAmount:     decimal.Zero,
				TotalAfterDiscount: line.Amount,
			}
			reason := Validate(coupon, usage, line.CategoryID, line.Amount, now)
			result.Reason = reason
			result.Message = reason.Message()
			if reason.Eligible() {
				anyEligible = true
				result.DiscountAmount = ComputeDiscount(coupon, line.Amount, s.clampFixed)
				result.TotalAfterDiscount = line.Amount.Sub(result.DiscountAmount)
			}
			results = append(results, result)
		}

		if !anyEligible {
			return nil
		}
		return s.recordUsage(ctx, repo, coupon, userID)
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ApplyToOrder prices the coupon for a checkout inside the caller's
// transaction and records one usage. It fails when no line is eligible.
func (s *service) ApplyToOrder(ctx context.Context, tx *gorm.DB, userID uuid.UUID, code string, lines []OrderLineAmount) (*Application, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required to apply coupon")
	}
	repo := s.repo.WithTx(tx)
	coupon, usage, err := s.loadForUser(ctx, repo, code, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	app := &Application{Coupon: coupon, TotalDiscount: decimal.Zero}
	reasons := make(map[string]Reason, len(lines))
	misses := 0
	for _, line := range lines {
		verdict := LineDiscount{ProductID: line.ProductID, SKU: line.SKU, Discount: decimal.Zero}
		verdict.Reason = Validate(coupon, usage, line.CategoryID, line.Amount, now)
		if verdict.Reason.Eligible() {
			verdict.Discount = ComputeDiscount(coupon, line.Amount, s.clampFixed)
			app.TotalDiscount = app.TotalDiscount.Add(verdict.Discount)
		} else {
			misses++
			reasons[line.ProductID.String()+"/"+line.SKU] = verdict.Reason
		}
		app.Lines = append(app.Lines, verdict)
	}

	if misses == len(lines) {
		return nil, pkgerrors.New(pkgerrors.CodeCouponIneligible, "coupon is not applicable to any item in this order").
			WithDetails(map[string]any{"code": coupon.Code, "reasons": reasons})
	}
	if err := s.recordUsage(ctx, repo, coupon, userID); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *service) RecordUsage(ctx context.Context, tx *gorm.DB, couponID, userID uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	coupon, err := repo.FindByID(ctx, couponID)
	if err != nil {
		return mapNotFound(err, "coupon not found")
	}
	return s.recordUsage(ctx, repo, coupon, userID)
}

func (s *service) recordUsage(ctx context.Context, repo Repository, coupon *models.Coupon, userID uuid.UUID) error {
	ok, err := repo.IncrementUsage(ctx, coupon.ID, userID, coupon.UsageLimit)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record coupon usage")
	}
	if !ok {
		return ineligible(coupon.Code, ReasonUsageLimitReached)
	}
	return nil
}

// loadForUser resolves the coupon and rejects coupon-level failures.
func (s *service) loadForUser(ctx context.Context, repo Repository, code string, userID uuid.UUID) (*models.Coupon, *models.CouponUsage, error) {
	if NormalizeCode(code) == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	coupon, err := repo.FindByCode(ctx, code)
	if err != nil {
		return nil, nil, mapNotFound(err, ReasonNotFound.Message())
	}
	if reason := CheckCoupon(coupon, s.now()); !reason.Eligible() {
		return nil, nil, ineligible(coupon.Code, reason)
	}
	usage, err := repo.FindUsage(ctx, coupon.ID, userID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon usage")
	}
	return coupon, usage, nil
}

func (s *service) Create(ctx context.Context, input CouponInput) (*models.Coupon, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	categories := uniqueIDs(input.EligibleCategories)

	var created *models.Coupon
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.ensureCategories(ctx, repo, categories); err != nil {
			return err
		}
		if _, err := repo.FindByCode(ctx, input.Code); err == nil {
			return duplicateCode(input.Code)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check coupon code")
		}

		coupon := couponFromInput(input)
		for _, id := range categories {
			coupon.EligibleCategories = append(coupon.EligibleCategories, models.CouponCategory{CategoryID: id})
		}
		if err := repo.Create(ctx, coupon); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return duplicateCode(input.Code)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
		}
		reloaded, err := repo.FindByID(ctx, coupon.ID)
		if err != nil {
			return err
		}
		created = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input CouponInput) (*models.Coupon, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	categories := uniqueIDs(input.EligibleCategories)

	var updated *models.Coupon
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err, "coupon not found")
		}
		if err := s.ensureCategories(ctx, repo, categories); err != nil {
			return err
		}
		if other, err := repo.FindByCode(ctx, input.Code); err == nil && other.ID != id {
			return duplicateCode(input.Code)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check coupon code")
		}

		coupon := couponFromInput(input)
		coupon.ID = existing.ID
		if input.IsActive == nil {
			coupon.IsActive = existing.IsActive
		}
		if err := repo.Update(ctx, coupon, categories); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return duplicateCode(input.Code)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
		}
		updated, err = repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "coupon not found")
	}
	return coupon, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, activeOnly bool) (*CouponList, error) {
	coupons, total, err := s.repo.List(ctx, params, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	if coupons == nil {
		coupons = []models.Coupon{}
	}
	return &CouponList{Coupons: coupons, Page: pagination.NewPage(params, total)}, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deleted, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil
	})
}

func (s *service) ToggleActive(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon *models.Coupon
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		toggled, err := repo.ToggleActive(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle coupon")
		}
		if !toggled {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		coupon, err = repo.FindByID(ctx, id)
		return err
	})
	return coupon, err
}

func (s *service) validateInput(input CouponInput) error {
	fields := map[string]string{}
	if !input.DiscountValue.IsPositive() {
		fields["discount_value"] = "must be greater than zero"
	}
	if input.DiscountType == enums.DiscountPercentage && input.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		fields["discount_value"] = "percentage cannot exceed 100"
	}
	if input.MinPurchaseAmount.IsNegative() {
		fields["min_purchase_amount"] = "must not be negative"
	}
	if input.MaxDiscountAmount != nil && input.MaxDiscountAmount.IsNegative() {
		fields["max_discount_amount"] = "must not be negative"
	}
	for _, id := range input.EligibleCategories {
		if id == uuid.Nil {
			fields["eligible_categories"] = "must contain valid category ids"
		}
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon").WithDetails(fields)
	}
	return nil
}

func (s *service) ensureCategories(ctx context.Context, repo Repository, ids []uuid.UUID) error {
	count, err := repo.CountCategories(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check categories")
	}
	if count != int64(len(ids)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid category").
			WithDetails(map[string]any{"field": "eligible_categories"})
	}
	return nil
}

func couponFromInput(input CouponInput) *models.Coupon {
	coupon := &models.Coupon{
		Code:              NormalizeCode(input.Code),
		Description:       input.Description,
		DiscountType:      input.DiscountType,
		DiscountValue:     input.DiscountValue,
		MinPurchaseAmount: input.MinPurchaseAmount,
		UsageLimit:        input.UsageLimit,
		ExpirationDate:    input.ExpirationDate.UTC(),
		IsActive:          true,
	}
	if input.MaxDiscountAmount != nil {
		coupon.MaxDiscountAmount = decimal.NewNullDecimal(*input.MaxDiscountAmount)
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}
	return coupon
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func ineligible(code string, reason Reason) error {
	return pkgerrors.New(pkgerrors.CodeCouponIneligible, reason.Message()).
		WithDetails(map[string]any{"code": code, "reason": reason})
}

func duplicateCode(code string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists").
		WithDetails(map[string]any{"code": NormalizeCode(code)})
}

func mapNotFound(err error, message string) error {
	if repo.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
}
