package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-order-pricing/internal/pricing"
)

// Summary is the condensed view of a recorded order.
type Summary struct {
	OrderID    string          `json:"order_id"`
	Status     pricing.Status  `json:"status"`
	Date       time.Time       `json:"date"`
	Customer   string          `json:"customer"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Shipping   decimal.Decimal `json:"shipping"`
	FinalTotal decimal.Decimal `json:"final_total"`
}

// MarshalJSON writes amounts as fixed two-place strings.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	return json.Marshal(struct {
		plain
		Subtotal   string `json:"subtotal"`
		Discount   string `json:"discount"`
		Shipping   string `json:"shipping"`
		FinalTotal string `json:"final_total"`
	}{plain(s), pricing.Money(s.Subtotal), pricing.Money(s.Discount), pricing.Money(s.Shipping), pricing.Money(s.FinalTotal)})
}

// Summarize reads the amounts already computed by the pricing engine; nothing is re-priced here.
func Summarize(o pricing.PricedOrder) Summary {
	return Summary{
		OrderID:    o.OrderID,
		Status:     o.Status,
		Date:       o.CreatedAt,
		Customer:   o.CustomerEmail,
		Subtotal:   o.Subtotal,
		Discount:   o.Discount,
		Shipping:   o.Shipping,
		FinalTotal: o.FinalTotal,
	}
}

// Record represents the item stored in the Orders DynamoDB table. Amounts are kept as
// decimal strings so no precision is lost.
type Record struct {
	OrderID         string       `dynamodbav:"order_id"` // PK
	CustomerEmail   string       `dynamodbav:"customer_email"`
	Destination     string       `dynamodbav:"destination,omitempty"`
	Domestic        bool         `dynamodbav:"domestic"`
	Status          string       `dynamodbav:"status"`
	Subtotal        string       `dynamodbav:"subtotal"`
	Discount        string       `dynamodbav:"discount"`
	Shipping        string       `dynamodbav:"shipping"`
	FinalTotal      string       `dynamodbav:"final_total"`
	PromotionCode   string       `dynamodbav:"promotion_code,omitempty"`
	PromotionKind   string       `dynamodbav:"promotion_kind,omitempty"`
	PromotionStatus string       `dynamodbav:"promotion_status"`
	Lines           []LineRecord `dynamodbav:"lines"`
	CreatedAt       time.Time    `dynamodbav:"created_at"`
	ArchivedAt      time.Time    `dynamodbav:"archived_at"`
}

// LineRecord is a persisted order line.
type LineRecord struct {
	ProductID int64  `dynamodbav:"product_id"`
	Name      string `dynamodbav:"name,omitempty"`
	Quantity  int    `dynamodbav:"quantity"`
	UnitPrice string `dynamodbav:"unit_price"`
	LineTotal string `dynamodbav:"line_total"`
	Found     bool   `dynamodbav:"found"`
	Reason    string `dynamodbav:"reason,omitempty"`
}

func toRecord(o pricing.PricedOrder, archivedAt time.Time) Record {
	r := Record{
		OrderID:         o.OrderID,
		CustomerEmail:   o.CustomerEmail,
		Destination:     o.Destination,
		Domestic:        o.Domestic,
		Status:          string(o.Status),
		Subtotal:        o.Subtotal.StringFixed(2),
		Discount:        o.Discount.StringFixed(2),
		Shipping:        o.Shipping.StringFixed(2),
		FinalTotal:      o.FinalTotal.StringFixed(2),
		PromotionCode:   o.Promotion.Code,
		PromotionKind:   o.Promotion.Kind,
		PromotionStatus: string(o.Promotion.Status),
		Lines:           make([]LineRecord, 0, len(o.Lines)),
		CreatedAt:       o.CreatedAt,
		ArchivedAt:      archivedAt,
	}
	for _, l := range o.Lines {
		r.Lines = append(r.Lines, LineRecord{
			ProductID: l.ItemID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			LineTotal: l.LineTotal.StringFixed(2),
			Found:     l.Found,
			Reason:    l.Reason,
		})
	}
	return r
}

func (r Record) toOrder() (pricing.PricedOrder, error) {
	o := pricing.PricedOrder{
		OrderID:       r.OrderID,
		CustomerEmail: r.CustomerEmail,
		Destination:   r.Destination,
		Domestic:      r.Domestic,
		Status:        pricing.Status(r.Status),
		Promotion: pricing.PromotionOutcome{
			Code:   r.PromotionCode,
			Kind:   r.PromotionKind,
			Status: pricing.PromotionStatus(r.PromotionStatus),
		},
		Lines:     make([]pricing.LineDetail, 0, len(r.Lines)),
		CreatedAt: r.CreatedAt,
	}
	var err error
	amounts := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&o.Subtotal, r.Subtotal},
		{&o.Discount, r.Discount},
		{&o.Shipping, r.Shipping},
		{&o.FinalTotal, r.FinalTotal},
	}
	for _, a := range amounts {
		if *a.dst, err = decimal.NewFromString(a.src); err != nil {
			return o, err
		}
	}
	for _, l := range r.Lines {
		d := pricing.LineDetail{ItemID: l.ProductID, Name: l.Name, Quantity: l.Quantity, Found: l.Found, Reason: l.Reason}
		if d.UnitPrice, err = decimal.NewFromString(l.UnitPrice); err != nil {
			return o, err
		}
		if d.LineTotal, err = decimal.NewFromString(l.LineTotal); err != nil {
			return o, err
		}
		o.Lines = append(o.Lines, d)
	}
	return o, nil
}
