package sales

import (
	"net/http"

	"github.com/albin6/cellsphere/api/responses"
	"github.com/albin6/cellsphere/api/validators"
	internalsales "github.com/albin6/cellsphere/internal/sales"
	"github.com/albin6/cellsphere/pkg/enums"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
	"github.com/albin6/cellsphere/pkg/logger"
)

// Report summarises sales for ?period=daily|weekly|monthly|custom|all. The
// custom period reads startDate and endDate.
func Report(svc internalsales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}
		period, err := enums.ParseSalesPeriod(r.URL.Query().Get("period"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid period").WithDetails(map[string]any{"field": "period"}))
			return
		}
		query := internalsales.ReportQuery{Period: period}
		if query.Start, err = validators.ParseQueryTime(r, "startDate"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if query.End, err = validators.ParseQueryTime(r, "endDate"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Report(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
