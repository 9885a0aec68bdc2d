package promotions

import "github.com/shopspring/decimal"

// Kind is the effect a promotion has on an order.
type Kind string

const (
	KindFreeShipping    Kind = "free_shipping"
	KindPercentDiscount Kind = "percent_discount"
)

// Promotion is a named rule applied by code lookup.
type Promotion struct {
	Code    string          `json:"code"`
	Kind    Kind            `json:"kind"`
	Percent decimal.Decimal `json:"percent,omitempty"` // percent_discount only
}

// RegisterResult reports what Register did with a code.
type RegisterResult string

const (
	Registered    RegisterResult = "registered"
	AlreadyActive RegisterResult = "already_active"
	Rejected      RegisterResult = "rejected"
)
