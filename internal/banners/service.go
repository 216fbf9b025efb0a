package banners

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/pkg/db/models"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
	"github.com/albin6/cellsphere/pkg/logger"
	"github.com/albin6/cellsphere/pkg/pagination"
	"github.com/albin6/cellsphere/pkg/validation"
)

// Service manages the storefront hero banners.
type Service interface {
	Create(ctx context.Context, input BannerInput) (*models.Banner, error)
	List(ctx context.Context, params pagination.Params) (*BannerList, error)
	ListActive(ctx context.Context) ([]models.Banner, error)
	Update(ctx context.Context, id uuid.UUID, input BannerInput) (*models.Banner, error)
	ToggleStatus(ctx context.Context, id uuid.UUID) (*models.Banner, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceParams struct {
	Repository Repository
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	repo     Repository
	logg     *logger.Logger
	now      func() time.Time
	validate *validator.Validate
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("banners repository required")
	}
	s := &service{
		repo:     params.Repository,
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

func (s *service) Create(ctx context.Context, input BannerInput) (*models.Banner, error) {
	if err := s.check(input); err != nil {
		return nil, err
	}
	banner := &models.Banner{IsActive: true}
	s.apply(banner, input)
	if err := s.repo.Create(ctx, banner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create banner")
	}
	s.logg.Info(s.logg.WithField(ctx, "banner_id", banner.ID.String()), "banner created")
	return banner, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*BannerList, error) {
	banners, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list banners")
	}
	if banners == nil {
		banners = []models.Banner{}
	}
	return &BannerList{Banners: banners, Page: pagination.NewPage(params, total)}, nil
}

// ListActive is the storefront carousel: switched-on banners that have not
// passed their expiry.
func (s *service) ListActive(ctx context.Context) ([]models.Banner, error) {
	banners, err := s.repo.ListLive(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active banners")
	}
	if banners == nil {
		banners = []models.Banner{}
	}
	return banners, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input BannerInput) (*models.Banner, error) {
	if err := s.check(input); err != nil {
		return nil, err
	}
	banner, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.apply(banner, input)
	if err := s.repo.Update(ctx, banner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update banner")
	}
	return banner, nil
}

func (s *service) ToggleStatus(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	toggled, err := s.repo.ToggleActive(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle banner")
	}
	if !toggled {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Banner not found")
	}
	return s.load(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete banner")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Banner not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	banner, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Banner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load banner")
	}
	return banner, nil
}

func (s *service) check(input BannerInput) error {
	if err := s.validate.Struct(input); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid banner")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(s.now()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "banner expiry must be in the future").
			WithDetails(map[string]any{"field": "expires_at", "value": input.ExpiresAt.Format(time.RFC3339)})
	}
	return nil
}

func (s *service) apply(banner *models.Banner, input BannerInput) {
	banner.HeadingOne = strings.TrimSpace(input.HeadingOne)
	banner.HeadingFour = strings.TrimSpace(input.HeadingFour)
	banner.Description = strings.TrimSpace(input.Description)
	banner.Image = strings.TrimSpace(input.Image)
	if input.Status != nil {
		banner.IsActive = *input.Status
	}
	banner.ExpiresAt = nil
	if input.ExpiresAt != nil {
		at := input.ExpiresAt.UTC()
		banner.ExpiresAt = &at
	}
}
