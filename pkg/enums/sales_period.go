package enums

import (
	"fmt"
	"strings"
)

// SalesPeriod selects the order-date window of a sales report.
type SalesPeriod string

const (
	SalesPeriodDaily   SalesPeriod = "daily"
	SalesPeriodWeekly  SalesPeriod = "weekly"
	SalesPeriodMonthly SalesPeriod = "monthly"
	SalesPeriodCustom  SalesPeriod = "custom"
	SalesPeriodAll     SalesPeriod = "all"
)

var validSalesPeriods = []SalesPeriod{
	SalesPeriodDaily,
	SalesPeriodWeekly,
	SalesPeriodMonthly,
	SalesPeriodCustom,
	SalesPeriodAll,
}

// IsValid reports whether the value is a known SalesPeriod.
func (p SalesPeriod) IsValid() bool {
	for _, candidate := range validSalesPeriods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseSalesPeriod converts raw input into a SalesPeriod; blank means daily.
func ParseSalesPeriod(value string) (SalesPeriod, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return SalesPeriodDaily, nil
	}
	candidate := SalesPeriod(trimmed)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid sales period %q", value)
	}
	return candidate, nil
}
