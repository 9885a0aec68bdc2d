package idempotency

import "time"

// Status values for idempotency entries
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
)

// Record is the shape persisted in the idempotency DynamoDB table. It maps a client
// Idempotency-Key to the order it produced and the receipt that was returned.
type Record struct {
	IdempotencyKey string    `dynamodbav:"idempotency_key"` // PK
	Status         string    `dynamodbav:"status"`
	OrderID        string    `dynamodbav:"order_id,omitempty"`
	ReceiptBody    string    `dynamodbav:"receipt_body,omitempty"`
	ReceiptStatus  int       `dynamodbav:"receipt_status,omitempty"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	ExpiresAt      int64     `dynamodbav:"expires_at"` // TTL epoch seconds
}

// NewClaim builds the IN_PROGRESS record written alongside a new order.
func NewClaim(key, orderID string, now time.Time, ttl time.Duration) Record {
	return Record{
		IdempotencyKey: key,
		Status:         StatusInProgress,
		OrderID:        orderID,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(ttl).Unix(),
	}
}
