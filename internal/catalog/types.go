package catalog

import "github.com/shopspring/decimal"

// Kind selects the tax rule applied to an item.
type Kind string

const (
	KindStandard Kind = "standard"
	KindBook     Kind = "book"
	KindSoftware Kind = "software"
)

// Item is a priceable catalog entry. Items are immutable once added.
type Item struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Kind     Kind            `json:"kind"`
}
