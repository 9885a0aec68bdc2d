package pricing

import "github.com/shopspring/decimal"

// Options holds the named rates and thresholds the engine prices with.
type Options struct {
	DomesticCountry   string
	DomesticLowRate   decimal.Decimal // domestic, discounted subtotal below HighTierThreshold
	DomesticHighRate  decimal.Decimal // domestic, discounted subtotal at or above HighTierThreshold
	InternationalRate decimal.Decimal
	HighTierThreshold decimal.Decimal
}

func DefaultOptions() Options {
	return Options{
		DomesticCountry:   "US",
		DomesticLowRate:   decimal.RequireFromString("5.00"),
		DomesticHighRate:  decimal.RequireFromString("7.50"),
		InternationalRate: decimal.RequireFromString("25.00"),
		HighTierThreshold: decimal.RequireFromString("50.00"),
	}
}
