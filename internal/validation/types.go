package validation

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-order-pricing/internal/inventory"
	"github.com/imrishuroy/go-order-pricing/internal/pricing"
)

// MaxBatchRecords caps the records accepted by one stock batch request.
const MaxBatchRecords = 1000

// OrderItem represents a single requested order line.
type OrderItem struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"min=1"`
}

// Customer is the billing contact. An empty email is priced as failed_missing_customer.
type Customer struct {
	Name  string `json:"name" validate:"max=200"`
	Email string `json:"email" validate:"omitempty,email"`
}

// ShipTo is a structured destination.
type ShipTo struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country" validate:"required,min=2,max=3"`
}

// PlaceOrderRequest is the payload for POST /orders. Exactly one of Address ("street, city, COUNTRY")
// and ShipTo is set. Empty items are allowed through so the engine can report failed_no_items.
type PlaceOrderRequest struct {
	OrderID       string      `json:"order_id" validate:"omitempty,max=64"`
	Customer      Customer    `json:"customer"`
	Address       string      `json:"address"`
	ShipTo        *ShipTo     `json:"ship_to"`
	Items         []OrderItem `json:"items" validate:"omitempty,dive"`
	PromotionCode string      `json:"promotion_code" validate:"omitempty,max=64"`
}

// ToPricing converts the request for the pricing engine.
func (r PlaceOrderRequest) ToPricing() pricing.Request {
	req := pricing.Request{
		OrderID:       r.OrderID,
		Lines:         make([]pricing.Line, 0, len(r.Items)),
		Customer:      pricing.Customer{Name: r.Customer.Name, Email: r.Customer.Email},
		PromotionCode: r.PromotionCode,
	}
	for _, it := range r.Items {
		req.Lines = append(req.Lines, pricing.Line{ItemID: it.ProductID, Quantity: it.Quantity})
	}
	if r.ShipTo != nil {
		req.Destination = pricing.Address{Street: r.ShipTo.Street, City: r.ShipTo.City, CountryCode: r.ShipTo.Country}
	} else {
		req.Destination = pricing.AddressLine(r.Address)
	}
	return req
}

// RegisterPromotionRequest is the payload for POST /promotions. Percent is required for
// percent_discount; the registry decides whether the combination is acceptable.
type RegisterPromotionRequest struct {
	Code    string           `json:"code" validate:"required,max=64"`
	Kind    string           `json:"kind" validate:"required"`
	Percent *decimal.Decimal `json:"percent"`
}

// PercentOrZero returns Percent, or zero when omitted.
func (r RegisterPromotionRequest) PercentOrZero() decimal.Decimal {
	if r.Percent == nil {
		return decimal.Zero
	}
	return *r.Percent
}

// StockRecord is one raw stock update. ID is kept as raw JSON so malformed ids are reported
// per record as invalid_id instead of failing the whole batch, and large ids keep every digit.
type StockRecord struct {
	ID    json.RawMessage `json:"id"`
	Stock int             `json:"stock"`
}

// StockBatchRequest is the payload for POST /inventory/batch.
type StockBatchRequest struct {
	LowStockThreshold *int             `json:"low_stock_threshold" validate:"omitempty,min=0"`
	MaxPrice          *decimal.Decimal `json:"max_price"`
	Records           []StockRecord    `json:"records" validate:"max=1000"`
}

// ToUpdates converts records, mapping non-integral or non-numeric ids to 0.
func (r StockBatchRequest) ToUpdates() []inventory.StockUpdate {
	out := make([]inventory.StockUpdate, 0, len(r.Records))
	for _, rec := range r.Records {
		out = append(out, inventory.StockUpdate{ID: recordID(rec.ID), Stock: rec.Stock})
	}
	return out
}

// Options overlays the request thresholds on defaults.
func (r StockBatchRequest) Options(defaults inventory.BatchOptions) inventory.BatchOptions {
	opts := defaults
	if r.LowStockThreshold != nil {
		opts.LowStockThreshold = *r.LowStockThreshold
	}
	if r.MaxPrice != nil {
		opts.MaxPrice = *r.MaxPrice
	}
	return opts
}

var (
	minRecordID = decimal.NewFromInt(math.MinInt64)
	maxRecordID = decimal.NewFromInt(math.MaxInt64)
)

// recordID parses a JSON number exactly. Strings, null, fractions and values outside int64 map to 0.
func recordID(raw json.RawMessage) int64 {
	d, err := decimal.NewFromString(string(bytes.TrimSpace(raw)))
	if err != nil || !d.IsInteger() || d.LessThan(minRecordID) || d.GreaterThan(maxRecordID) {
		return 0
	}
	return d.IntPart()
}
