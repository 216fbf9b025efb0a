package otp

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/albin6/cellsphere/internal/repo"
	"github.com/albin6/cellsphere/pkg/db/models"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, code *models.OTP) error
	LatestSince(ctx context.Context, email string, since time.Time) (*models.OTP, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
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

func (r *repository) Create(ctx context.Context, code *models.OTP) error {
	return r.base.DB(ctx).Create(code).Error
}

// LatestSince returns the newest code for email created at or after since.
func (r *repository) LatestSince(ctx context.Context, email string, since time.Time) (*models.OTP, error) {
	var code models.OTP
	err := r.base.DB(ctx).
		Where("email = ? AND created_at >= ?", email, since.UTC()).
		Order("created_at DESC").
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) DeleteByEmail(ctx context.Context, email string) error {
	return r.base.DB(ctx).Where("email = ?", email).Delete(&models.OTP{}).Error
}

func (r *repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.base.DB(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&models.OTP{})
	return res.RowsAffected, res.Error
}
