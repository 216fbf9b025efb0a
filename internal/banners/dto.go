package banners

import (
	"time"

	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/pagination"
)

// BannerInput is the admin create and replace payload. A nil Status keeps the
// banner live on create and leaves it unchanged on update.
type BannerInput struct {
	HeadingOne  string     `json:"heading_one" validate:"max=120"`
	HeadingFour string     `json:"heading_four" validate:"max=120"`
	Description string     `json:"description" validate:"max=500"`
	Image       string     `json:"image" validate:"required,url,max=2048"`
	Status      *bool      `json:"status"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// BannerList is the paginated admin listing.
type BannerList struct {
	Banners []models.Banner `json:"banners"`
	pagination.Page
}
