package banners

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/albin6/cellsphere/pkg/db/dbtest"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
	"github.com/albin6/cellsphere/pkg/pagination"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (Service, *time.Time) {
	t.Helper()
	conn := dbtest.Open(t)
	clock := now
	svc, err := NewService(ServiceParams{
		Repository: NewRepository(conn),
		Now:        func() time.Time { return clock },
	})
	require.NoError(t, err)
	return svc, &clock
}

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func off() *bool {
	v := false
	return &v
}

func TestCreateDefaultsToActive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	banner, err := svc.Create(ctx, BannerInput{
		HeadingOne:  "  Pixel 9 is here ",
		Description: "Pre-order now",
		Image:       "https://cdn.example.com/banners/pixel9.webp",
		ExpiresAt:   at(72 * time.Hour),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, banner.ID)
	require.True(t, banner.IsActive)
	require.Equal(t, "Pixel 9 is here", banner.HeadingOne)

	hidden, err := svc.Create(ctx, BannerInput{Image: "https://cdn.example.com/b.png", Status: off()})
	require.NoError(t, err)
	require.False(t, hidden.IsActive)

	live, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, live, 1)
	require.Equal(t, banner.ID, live[0].ID)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, BannerInput{Image: "not a url"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, BannerInput{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, BannerInput{Image: "https://cdn.example.com/a.png", ExpiresAt: at(-time.Minute)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListActiveHidesExpired(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	short, err := svc.Create(ctx, BannerInput{Image: "https://cdn.example.com/flash.png", ExpiresAt: at(time.Hour)})
	require.NoError(t, err)
	open, err := svc.Create(ctx, BannerInput{Image: "https://cdn.example.com/brand.png"})
	require.NoError(t, err)

	live, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, live, 2)

	*clock = now.Add(2 * time.Hour)
	live, err = svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, live, 1)
	require.Equal(t, open.ID, live[0].ID)

	list, err := svc.List(ctx, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), list.Total)
	require.Equal(t, short.ID, list.Banners[0].ID, "dated banners sort before open-ended ones")
}

func TestToggleUpdateAndDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	banner, err := svc.Create(ctx, BannerInput{Image: "https://cdn.example.com/a.png", ExpiresAt: at(time.Hour)})
	require.NoError(t, err)

	toggled, err := svc.ToggleStatus(ctx, banner.ID)
	require.NoError(t, err)
	require.False(t, toggled.IsActive)
	live, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Empty(t, live)

	updated, err := svc.Update(ctx, banner.ID, BannerInput{HeadingFour: "Up to 20% off", Image: "https://cdn.example.com/b.png"})
	require.NoError(t, err)
	require.False(t, updated.IsActive, "nil status leaves the flag alone")
	require.Nil(t, updated.ExpiresAt)
	require.Equal(t, "https://cdn.example.com/b.png", updated.Image)

	require.NoError(t, svc.Delete(ctx, banner.ID))
	err = svc.Delete(ctx, banner.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.ToggleStatus(ctx, banner.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.Update(ctx, uuid.New(), BannerInput{Image: "https://cdn.example.com/c.png"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
