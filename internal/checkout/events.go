package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-order-pricing/internal/inventory"
)

// Message types carried in the "type" SQS message attribute.
const (
	EventOrderPriced = "order.priced"
	EventStockBatch  = "stock.batch"
)

// EventPublisher sends JSON messages to the orders queue. *aws.Publisher implements it.
type EventPublisher interface {
	SendJSON(ctx context.Context, v any, attributes map[string]string) error
}

// OrderPricedEvent is published after an order is priced and recorded.
type OrderPricedEvent struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	OrderID       string    `json:"order_id"`
	Status        string    `json:"status"`
	CustomerEmail string    `json:"customer_email"`
	FinalTotal    string    `json:"final_total"`
	Promotion     string    `json:"promotion_code,omitempty"`
	MissingItems  []int64   `json:"missing_items,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// StockBatchMessage is the body of a queued stock-update batch. Omitted thresholds fall back to
// the consumer's configured defaults.
type StockBatchMessage struct {
	BatchID           string                  `json:"batch_id"`
	LowStockThreshold *int                    `json:"low_stock_threshold,omitempty"`
	MaxPrice          *decimal.Decimal        `json:"max_price,omitempty"`
	Records           []inventory.StockUpdate `json:"records"`
}

// Options overlays the message's thresholds on defaults.
func (m StockBatchMessage) Options(defaults inventory.BatchOptions) inventory.BatchOptions {
	opts := defaults
	if m.LowStockThreshold != nil {
		opts.LowStockThreshold = *m.LowStockThreshold
	}
	if m.MaxPrice != nil {
		opts.MaxPrice = *m.MaxPrice
	}
	return opts
}
