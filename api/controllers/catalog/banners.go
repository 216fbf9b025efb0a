package catalog

import (
	"net/http"

	"github.com/albin6/cellsphere/api/responses"
	"github.com/albin6/cellsphere/api/validators"
	"github.com/albin6/cellsphere/internal/banners"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
	"github.com/albin6/cellsphere/pkg/logger"
)

func bannerServiceMissing(svc banners.Service, w http.ResponseWriter, r *http.Request, logg *logger.Logger) bool {
	if svc != nil {
		return false
	}
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banner service unavailable"))
	return true
}

func decodeBanner(r *http.Request) (banners.BannerInput, error) {
	var input banners.BannerInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		return input, err
	}
	input.HeadingOne = validators.SanitizeString(input.HeadingOne, 120)
	input.HeadingFour = validators.SanitizeString(input.HeadingFour, 120)
	input.Description = validators.SanitizeString(input.Description, 500)
	return input, nil
}

// BannersActive serves the storefront carousel.
func BannersActive(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bannerServiceMissing(svc, w, r, logg) {
			return
		}
		list, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func BannersList(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bannerServiceMissing(svc, w, r, logg) {
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func BannersCreate(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bannerServiceMissing(svc, w, r, logg) {
			return
		}
		input, err := decodeBanner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		banner, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, banner)
	}
}

func BannersUpdate(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bannerServiceMissing(svc, w, r, logg) {
			return
		}
		bannerID, err := validators.ParsePathUUID(r, "bannerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := decodeBanner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		banner, err := svc.Update(r.Context(), bannerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, banner)
	}
}

// BannersToggle flips a banner between live and hidden.
func BannersToggle(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bannerServiceMissing(svc, w, r, logg) {
			return
		}
		bannerID, err := validators.ParsePathUUID(r, "bannerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		banner, err := svc.ToggleStatus(r.Context(), bannerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, banner)
	}
}

func BannersDelete(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bannerServiceMissing(svc, w, r, logg) {
			return
		}
		bannerID, err := validators.ParsePathUUID(r, "bannerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), bannerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Banner deleted"})
	}
}
