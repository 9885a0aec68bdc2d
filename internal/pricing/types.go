package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the outcome of pricing an order.
type Status string

const (
	StatusPending               Status = "pending"
	StatusFailedNoItems         Status = "failed_no_items"
	StatusFailedMissingCustomer Status = "failed_missing_customer"
	StatusFailedProductNotFound Status = "failed_product_not_found"
	StatusCompleted             Status = "completed"
)

// Rejected reports whether the order was refused before any line was priced.
func (s Status) Rejected() bool {
	return s == StatusFailedNoItems || s == StatusFailedMissingCustomer
}

// Line is one requested item.
type Line struct {
	ItemID   int64 `json:"product_id"`
	Quantity int   `json:"quantity"`
}

// Customer carries the contact the order is billed to.
type Customer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Destination is where an order ships. Only the country matters for pricing.
type Destination interface {
	Country() string
	String() string
}

// AddressLine is a free-form address whose last comma-separated part is the country,
// e.g. "123 Main St, Anytown, US".
type AddressLine string

func (a AddressLine) Country() string {
	s := string(a)
	if i := strings.LastIndex(s, ","); i >= 0 {
		s = s[i+1:]
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

func (a AddressLine) String() string { return string(a) }

// Address is a structured destination.
type Address struct {
	Street      string `json:"street,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"country"`
}

func (a Address) Country() string { return strings.ToUpper(strings.TrimSpace(a.CountryCode)) }

func (a Address) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Street, a.City, a.CountryCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Request is everything needed to price one order.
type Request struct {
	OrderID       string
	Lines         []Line
	Customer      Customer
	Destination   Destination
	PromotionCode string
}

// LineDetail is the priced view of a requested line.
type LineDetail struct {
	ItemID    int64           `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Found     bool            `json:"found"`
	Reason    string          `json:"reason,omitempty"`
}

// PromotionStatus describes what happened to a supplied promotion code.
type PromotionStatus string

const (
	PromotionNone     PromotionStatus = "none"
	PromotionApplied  PromotionStatus = "applied"
	PromotionNotFound PromotionStatus = "not_found"
)

// PromotionOutcome is reported on every priced order.
type PromotionOutcome struct {
	Code   string          `json:"code,omitempty"`
	Kind   string          `json:"kind,omitempty"`
	Status PromotionStatus `json:"status"`
}

// PricedOrder is the full breakdown produced by the engine, including degraded results.
// Subtotal is before discount; FinalTotal = Subtotal - Discount + Shipping, never negative.
type PricedOrder struct {
	OrderID       string           `json:"order_id"`
	CustomerEmail string           `json:"customer_email"`
	Destination   string           `json:"destination"`
	Domestic      bool             `json:"domestic"`
	Lines         []LineDetail     `json:"lines"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	Discount      decimal.Decimal  `json:"discount"`
	Shipping      decimal.Decimal  `json:"shipping"`
	FinalTotal    decimal.Decimal  `json:"final_total"`
	Promotion     PromotionOutcome `json:"promotion"`
	Status        Status           `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
}

// MissingItems lists the ids of lines that were not in the catalog.
func (o PricedOrder) MissingItems() []int64 {
	var ids []int64
	for _, l := range o.Lines {
		if !l.Found && l.Reason == ReasonNotFound {
			ids = append(ids, l.ItemID)
		}
	}
	return ids
}
