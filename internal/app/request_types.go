package app

import (
	"github.com/shopspring/decimal"

	"instant-invoice/internal/core"
)

// ComputeTotalsRequest is the input for a stateless totals computation.
type ComputeTotalsRequest struct {
	LineItems      []core.LineItem   `json:"line_items"`
	Discount       core.DiscountRule `json:"discount"`
	TaxRatePercent decimal.Decimal   `json:"tax_rate_percent"`
}
