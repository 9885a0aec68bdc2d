package inventory

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-order-pricing/internal/catalog"
)

// ReportLine is one item in a StockReport.
type ReportLine struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Stock      int             `json:"stock"`
	Active     bool            `json:"active"`
	TaxedPrice decimal.Decimal `json:"taxed_price"`
}

// MarshalJSON writes the taxed price with two decimal places.
func (l ReportLine) MarshalJSON() ([]byte, error) {
	type plain ReportLine
	return json.Marshal(struct {
		plain
		TaxedPrice string `json:"taxed_price"`
	}{plain(l), l.TaxedPrice.StringFixed(2)})
}

// StockReport summarises the ledger with tax-inclusive prices.
type StockReport struct {
	TotalItems int          `json:"total_items"`
	ReportDate string       `json:"report_date"`
	Details    []ReportLine `json:"details"`
}

// BuildReport lists every tracked item. Items missing from the catalog report a zero price.
func BuildReport(l *Ledger, items ItemSource, policy catalog.TaxPolicy, at time.Time) StockReport {
	entries := l.Entries()
	r := StockReport{
		TotalItems: len(entries),
		ReportDate: at.Format("2006-01-02"),
		Details:    make([]ReportLine, 0, len(entries)),
	}
	for _, e := range entries {
		line := ReportLine{ID: e.ItemID, Stock: e.Stock, Active: e.Active, TaxedPrice: decimal.Zero}
		if item, ok := items.GetItem(e.ItemID); ok {
			line.Name = item.Name
			line.TaxedPrice = policy.TaxedPrice(item)
		}
		r.Details = append(r.Details, line)
	}
	return r
}
