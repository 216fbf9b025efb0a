package offers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/internal/repo"
	"github.com/albin6/cellsphere/pkg/db/models"
)

// Repository persists offers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, offer *models.Offer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	List(ctx context.Context) ([]models.Offer, error)
	ListEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Offer, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
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

func (r *repository) Create(ctx context.Context, offer *models.Offer) error {
	return r.base.DB(ctx).Create(offer).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := r.base.DB(ctx).Where("id = ?", id).First(&offer).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) List(ctx context.Context) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.base.DB(ctx).Order("end_date ASC").Order("created_at DESC").Find(&offers).Error
	return offers, err
}

// ListEndedBefore returns offers whose end date is strictly before cutoff,
// oldest first.
func (r *repository) ListEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Offer, error) {
	var offers []models.Offer
	q := r.base.DB(ctx).Where("end_date < ?", cutoff.UTC()).Order("end_date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&offers).Error
	return offers, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.base.DB(ctx).Where("id = ?", id).Delete(&models.Offer{})
	return res.RowsAffected > 0, res.Error
}
