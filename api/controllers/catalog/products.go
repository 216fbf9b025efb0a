package catalog

import (
	"net/http"

	"github.com/albin6/cellsphere/api/responses"
	"github.com/albin6/cellsphere/api/validators"
	"github.com/albin6/cellsphere/internal/products"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
	"github.com/albin6/cellsphere/pkg/logger"
)

const (
	GroupCategories = "categories"
	GroupBrands     = "brands"
)

func BestSellers(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", products.DefaultBestSellerLimit, 1, products.MaxBestSellerLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.BestSellers(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// BestSellingGroups serves the best-selling categories or brands board,
// picked by the group argument.
func BestSellingGroups(svc products.Service, group string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", products.DefaultBestSellerLimit, 1, products.MaxBestSellerLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var ranks []products.SalesRank
		switch group {
		case GroupCategories:
			ranks, err = svc.TopCategories(r.Context(), limit)
		case GroupBrands:
			ranks, err = svc.TopBrands(r.Context(), limit)
		default:
			err = pkgerrors.Newf(pkgerrors.CodeInternal, "unknown sales group %q", group)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ranks)
	}
}
