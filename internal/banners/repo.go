package banners

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/internal/repo"
	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/pagination"
)

// Repository persists storefront banners.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, banner *models.Banner) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Banner, error)
	Update(ctx context.Context, banner *models.Banner) error
	ToggleActive(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, params pagination.Params) ([]models.Banner, int64, error)
	ListLive(ctx context.Context, at time.Time) ([]models.Banner, error)
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

func (r *repository) Create(ctx context.Context, banner *models.Banner) error {
	active := banner.IsActive
	db := r.base.DB(ctx)
	if err := db.Create(banner).Error; err != nil {
		return err
	}
	// gorm skips zero values of columns with defaults
	if !active {
		banner.IsActive = false
		return db.Model(&models.Banner{}).Where("id = ?", banner.ID).Update("is_active", false).Error
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	var banner models.Banner
	if err := r.base.DB(ctx).Where("id = ?", id).First(&banner).Error; err != nil {
		return nil, err
	}
	return &banner, nil
}

func (r *repository) Update(ctx context.Context, banner *models.Banner) error {
	return r.base.DB(ctx).Model(&models.Banner{}).
		Where("id = ?", banner.ID).
		Updates(map[string]any{
			"heading_one":  banner.HeadingOne,
			"heading_four": banner.HeadingFour,
			"description":  banner.Description,
			"image":        banner.Image,
			"is_active":    banner.IsActive,
			"expires_at":   banner.ExpiresAt,
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (r *repository) ToggleActive(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.base.DB(ctx).Model(&models.Banner{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_active":  gorm.Expr("NOT is_active"),
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.base.DB(ctx).Where("id = ?", id).Delete(&models.Banner{})
	return res.RowsAffected > 0, res.Error
}

// List pages every banner, latest expiry first and open-ended banners last.
func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.Banner, int64, error) {
	var total int64
	if err := r.base.DB(ctx).Model(&models.Banner{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params = params.Normalize()
	var banners []models.Banner
	err := r.base.DB(ctx).
		Order("expires_at IS NULL").
		Order("expires_at DESC").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&banners).Error
	return banners, total, err
}

// ListLive returns active banners that have not expired at the given instant.
func (r *repository) ListLive(ctx context.Context, at time.Time) ([]models.Banner, error) {
	var banners []models.Banner
	err := r.base.DB(ctx).
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", at.UTC()).
		Order("created_at DESC").
		Find(&banners).Error
	return banners, err
}
