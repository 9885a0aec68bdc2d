package pricing

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money renders an amount with exactly two decimal places, the way receipts show it.
func Money(d decimal.Decimal) string { return d.StringFixed(2) }

// MarshalJSON writes amounts as fixed two-place strings ("7.50", not "7.5").
func (l LineDetail) MarshalJSON() ([]byte, error) {
	type plain LineDetail
	return json.Marshal(struct {
		plain
		UnitPrice string `json:"unit_price"`
		LineTotal string `json:"line_total"`
	}{plain(l), Money(l.UnitPrice), Money(l.LineTotal)})
}

// MarshalJSON writes amounts as fixed two-place strings.
func (o PricedOrder) MarshalJSON() ([]byte, error) {
	type plain PricedOrder
	return json.Marshal(struct {
		plain
		Subtotal   string `json:"subtotal"`
		Discount   string `json:"discount"`
		Shipping   string `json:"shipping"`
		FinalTotal string `json:"final_total"`
	}{plain(o), Money(o.Subtotal), Money(o.Discount), Money(o.Shipping), Money(o.FinalTotal)})
}
