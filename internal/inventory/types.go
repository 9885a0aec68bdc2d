package inventory

import "github.com/shopspring/decimal"

// StockEntry is the stock state of one catalog item.
type StockEntry struct {
	ItemID int64 `json:"item_id"`
	Stock  int   `json:"stock"`
	Active bool  `json:"active"`
}

// StockUpdate is one record of a validation batch.
type StockUpdate struct {
	ID    int64 `json:"id"`
	Stock int   `json:"stock"`
}

// Classification summarises what happened to a batch record.
type Classification string

const (
	Accepted  Classification = "accepted"
	Corrected Classification = "corrected"
	Rejected  Classification = "rejected"
)

// Alert is a signal attached to a batch outcome.
type Alert string

const (
	AlertCorrected            Alert = "corrected"
	AlertLowStock             Alert = "low_stock"
	AlertDeactivatedHighPrice Alert = "deactivated_high_price"
	AlertNotFound             Alert = "not_found"
	AlertInvalidID            Alert = "invalid_id"
)

// ValidationOutcome is the per-record result of ProcessBatch.
type ValidationOutcome struct {
	Index          int            `json:"index"`
	ItemID         int64          `json:"item_id"`
	Classification Classification `json:"classification"`
	PreviousStock  int            `json:"previous_stock"`
	NewStock       int            `json:"new_stock"`
	Delta          int            `json:"delta"`
	Alerts         []Alert        `json:"alerts"`
}

// HasAlert reports whether a is attached to the outcome.
func (o ValidationOutcome) HasAlert(a Alert) bool {
	for _, x := range o.Alerts {
		if x == a {
			return true
		}
	}
	return false
}

// BatchOptions carries the thresholds a batch is validated against.
type BatchOptions struct {
	LowStockThreshold int             `json:"low_stock_threshold"`
	MaxPrice          decimal.Decimal `json:"max_price"`
}

// DefaultBatchOptions mirrors the historical defaults: threshold 50, max price 1000.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		LowStockThreshold: 50,
		MaxPrice:          decimal.NewFromInt(1000),
	}
}

// BatchResult is returned by ProcessBatch.
type BatchResult struct {
	Accepted int                 `json:"accepted"`
	Outcomes []ValidationOutcome `json:"outcomes"`
}

// AlertCounts tallies alerts across all outcomes.
func (r BatchResult) AlertCounts() map[Alert]int {
	counts := map[Alert]int{}
	for _, o := range r.Outcomes {
		for _, a := range o.Alerts {
			counts[a]++
		}
	}
	return counts
}
