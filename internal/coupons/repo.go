package coupons

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/albin6/cellsphere/internal/repo"
	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/pagination"
)

// Repository defines persistence for coupons, their category sets and usage counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	FindUsage(ctx context.Context, couponID, userID uuid.UUID) (*models.CouponUsage, error)
	IncrementUsage(ctx context.Context, couponID, userID uuid.UUID, limit int) (bool, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	Update(ctx context.Context, coupon *models.Coupon, categoryIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, params pagination.Params, activeOnly bool) ([]models.Coupon, int64, error)
	CountCategories(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type repository struct {
	base repo.Base
}

// NewRepository builds a coupons repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}

// NormalizeCode is the stored form of a coupon code; lookups are case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.base.DB(ctx).
		Preload("EligibleCategories").
		Where("code = ?", NormalizeCode(code)).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.base.DB(ctx).
		Preload("EligibleCategories").
		Where("id = ?", id).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// FindUsage returns nil without error when the user never redeemed the coupon.
func (r *repository) FindUsage(ctx context.Context, couponID, userID uuid.UUID) (*models.CouponUsage, error) {
	var usage models.CouponUsage
	err := r.base.DB(ctx).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		First(&usage).Error
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// IncrementUsage bumps used_count iff it stays within limit, inserting the
// first usage row when none exists. It reports false when the user is at the limit.
func (r *repository) IncrementUsage(ctx context.Context, couponID, userID uuid.UUID, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	db := r.base.DB(ctx)

	for attempt := 0; attempt < 2; attempt++ {
		res := db.Model(&models.CouponUsage{}).
			Where("coupon_id = ? AND user_id = ? AND used_count < ?", couponID, userID, limit).
			Updates(map[string]any{
				"used_count": gorm.Expr("used_count + 1"),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return false, res.Error
		}
		if res.RowsAffected > 0 {
			return true, nil
		}

		existing, err := r.FindUsage(ctx, couponID, userID)
		if err != nil {
			return false, err
		}
		if existing != nil {
			return false, nil
		}

		usage := models.CouponUsage{CouponID: couponID, UserID: userID, UsedCount: 1}
		res = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&usage)
		if res.Error != nil {
			return false, res.Error
		}
		if res.RowsAffected > 0 {
			return true, nil
		}
		// lost the insert race; the next pass increments the winner's row
	}
	return false, nil
}

func (r *repository) Create(ctx context.Context, coupon *models.Coupon) error {
	active := coupon.IsActive
	db := r.base.DB(ctx)
	if err := db.Create(coupon).Error; err != nil {
		return err
	}
	// gorm skips zero values of columns with defaults, so write false explicitly
	if !active {
		coupon.IsActive = false
		return db.Model(&models.Coupon{}).Where("id = ?", coupon.ID).Update("is_active", false).Error
	}
	return nil
}

// Update saves scalar fields and replaces the eligible category set.
func (r *repository) Update(ctx context.Context, coupon *models.Coupon, categoryIDs []uuid.UUID) error {
	db := r.base.DB(ctx)
	err := db.Model(&models.Coupon{}).
		Where("id = ?", coupon.ID).
		Updates(map[string]any{
			"code":                coupon.Code,
			"description":         coupon.Description,
			"discount_type":       coupon.DiscountType,
			"discount_value":      coupon.DiscountValue,
			"min_purchase_amount": coupon.MinPurchaseAmount,
			"max_discount_amount": coupon.MaxDiscountAmount,
			"usage_limit":         coupon.UsageLimit,
			"expiration_date":     coupon.ExpirationDate,
			"is_active":           coupon.IsActive,
			"updated_at":          time.Now().UTC(),
		}).Error
	if err != nil {
		return err
	}
	if err := db.Where("coupon_id = ?", coupon.ID).Delete(&models.CouponCategory{}).Error; err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	rows := make([]models.CouponCategory, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		rows = append(rows, models.CouponCategory{CouponID: coupon.ID, CategoryID: id})
	}
	return db.Create(&rows).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db := r.base.DB(ctx)
	if err := db.Where("coupon_id = ?", id).Delete(&models.CouponCategory{}).Error; err != nil {
		return false, err
	}
	if err := db.Where("coupon_id = ?", id).Delete(&models.CouponUsage{}).Error; err != nil {
		return false, err
	}
	res := db.Where("id = ?", id).Delete(&models.Coupon{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) ToggleActive(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.base.DB(ctx).Model(&models.Coupon{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_active":  gorm.Expr("NOT is_active"),
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) List(ctx context.Context, params pagination.Params, activeOnly bool) ([]models.Coupon, int64, error) {
	scoped := func() *gorm.DB {
		query := r.base.DB(ctx).Model(&models.Coupon{})
		if activeOnly {
			query = query.Where("is_active = ?", true)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params = params.Normalize()
	var coupons []models.Coupon
	err := scoped().
		Preload("EligibleCategories").
		Order("created_at DESC").
		Order("id DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&coupons).Error
	if err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

func (r *repository) CountCategories(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.base.DB(ctx).Model(&models.Category{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}
