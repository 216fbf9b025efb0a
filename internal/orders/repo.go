package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/internal/repo"
	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
	"github.com/albin6/cellsphere/pkg/pagination"
)

// Repository defines persistence operations for orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	List(ctx context.Context, params pagination.Params) ([]models.Order, int64, error)
	TransitionLine(ctx context.Context, lineID uuid.UUID, from, to enums.OrderStatus, fields map[string]any) (bool, error)
}

type repository struct {
	base repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.base.DB(ctx).Create(order).Error
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.base.DB(ctx).
		Preload("OrderItems", orderedLines).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.base.DB(ctx).
		Preload("OrderItems", orderedLines).
		Where("user_id = ?", userID).
		Order("placed_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.Order, int64, error) {
	var total int64
	if err := r.base.DB(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params = params.Normalize()
	var orders []models.Order
	err := r.base.DB(ctx).
		Preload("OrderItems", orderedLines).
		Order("placed_at DESC").
		Order("id DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// TransitionLine moves a line from -> to only if it is still in from, so two
// concurrent transitions out of the same state cannot both win.
func (r *repository) TransitionLine(ctx context.Context, lineID uuid.UUID, from, to enums.OrderStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{
		"order_status": to,
		"updated_at":   time.Now().UTC(),
	}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.base.DB(ctx).Model(&models.OrderLine{}).
		Where("id = ? AND order_status = ?", lineID, from).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}
