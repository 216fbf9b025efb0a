package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
)

// ReportQuery selects the order-date window of a report. Start and End are
// only read for the custom period.
type ReportQuery struct {
	Period enums.SalesPeriod
	Start  *time.Time
	End    *time.Time
}

// Report is the admin sales summary.
type Report struct {
	Reports          []models.SalesReportEntry `json:"reports"`
	TotalSalesCount  int                       `json:"totalSalesCount"`
	TotalOrderAmount decimal.Decimal           `json:"totalOrderAmount"`
	TotalDiscount    decimal.Decimal           `json:"totalDiscount"`
}
