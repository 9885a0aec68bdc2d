package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-order-pricing/internal/checkout"
)

// AlertSink receives per-batch alert counts. *aws.AlertPublisher implements it.
type AlertSink interface {
	PublishBatch(ctx context.Context, source string, accepted int, alerts map[string]int) error
}

// Processor applies queued stock batches to the worker's service.
type Processor struct {
	svc    *checkout.Service
	alerts AlertSink
}

// NewProcessor creates a new worker processor. alerts may be nil.
func NewProcessor(svc *checkout.Service, alerts AlertSink) *Processor {
	return &Processor{svc: svc, alerts: alerts}
}

// Handle processes an SQS batch. Malformed messages are reported as batch item failures so
// SQS retries them and eventually moves them to the DLQ; the rest of the batch is kept.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			log.WithFields(log.Fields{
				"message_id": rec.MessageId,
			}).WithError(err).Error("Worker failed to process message")
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	switch typ := messageType(rec); typ {
	case checkout.EventStockBatch:
	case checkout.EventOrderPriced:
		log.WithField("message_id", rec.MessageId).Debug("Skipping order event")
		return nil
	default:
		return fmt.Errorf("unknown message type %q", typ)
	}

	var msg checkout.StockBatchMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if msg.BatchID == "" {
		msg.BatchID = rec.MessageId
	}

	res := p.svc.ApplyStockBatch(ctx, msg.Records, msg.Options(p.svc.BatchDefaults()))

	counts := map[string]int{}
	for alert, n := range res.AlertCounts() {
		counts[string(alert)] = n
	}
	log.WithFields(log.Fields{
		"batch_id": msg.BatchID,
		"records":  len(msg.Records),
		"accepted": res.Accepted,
		"alerts":   counts,
	}).Info("Applied stock batch")

	if p.alerts == nil {
		return nil
	}
	// the batch is already applied; a retry would re-run it, so alert failures are only logged
	if err := p.alerts.PublishBatch(ctx, msg.BatchID, res.Accepted, counts); err != nil {
		log.WithField("batch_id", msg.BatchID).WithError(err).Warn("Failed to publish stock alerts")
	}
	return nil
}
