package orders

import "github.com/imrishuroy/go-order-pricing/internal/pricing"

// Ledger is the in-memory order history. Order ids are not required to be unique.
type Ledger struct {
	orders []pricing.PricedOrder
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Record appends o.
func (l *Ledger) Record(o pricing.PricedOrder) {
	l.orders = append(l.orders, o)
}

// Find returns the first order recorded under id.
func (l *Ledger) Find(id string) (pricing.PricedOrder, bool) {
	for _, o := range l.orders {
		if o.OrderID == id {
			return o, true
		}
	}
	return pricing.PricedOrder{}, false
}

// FindAll returns every order recorded under id in insertion order, exposing duplicates.
func (l *Ledger) FindAll(id string) []pricing.PricedOrder {
	var out []pricing.PricedOrder
	for _, o := range l.orders {
		if o.OrderID == id {
			out = append(out, o)
		}
	}
	return out
}

// Summary is Find followed by Summarize.
func (l *Ledger) Summary(id string) (Summary, bool) {
	o, ok := l.Find(id)
	if !ok {
		return Summary{}, false
	}
	return Summarize(o), true
}

func (l *Ledger) Len() int { return len(l.orders) }
