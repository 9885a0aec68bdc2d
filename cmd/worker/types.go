package main

import (
	"github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-order-pricing/internal/checkout"
)

// messageType reads the "type" attribute set by the API publisher. Messages without one are
// treated as stock batches so hand-queued batches still work.
func messageType(rec events.SQSMessage) string {
	if attr, ok := rec.MessageAttributes["type"]; ok && attr.StringValue != nil && *attr.StringValue != "" {
		return *attr.StringValue
	}
	return checkout.EventStockBatch
}
