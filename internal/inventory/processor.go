package inventory

import (
	"github.com/imrishuroy/go-order-pricing/internal/audit"
	"github.com/imrishuroy/go-order-pricing/internal/catalog"
)

// ItemSource resolves catalog items for names and prices.
type ItemSource interface {
	GetItem(id int64) (catalog.Item, bool)
}

// Processor validates stock-update batches and applies them to a Ledger.
type Processor struct {
	ledger *Ledger
	items  ItemSource
	audit  *audit.Log
}

func NewProcessor(ledger *Ledger, items ItemSource, log *audit.Log) *Processor {
	return &Processor{ledger: ledger, items: items, audit: log}
}

// ProcessBatch applies records in order. A bad record never stops the batch; it is reported
// in its outcome and skipped.
func (p *Processor) ProcessBatch(records []StockUpdate, opts BatchOptions) BatchResult {
	p.audit.Appendf("Starting batch data processing and validation (%d records).", len(records))

	res := BatchResult{Outcomes: make([]ValidationOutcome, 0, len(records))}
	for i, rec := range records {
		out := p.processRecord(i, rec, opts)
		if out.Classification != Rejected {
			res.Accepted++
		}
		res.Outcomes = append(res.Outcomes, out)
	}

	p.audit.Appendf("Finished processing %d product records.", res.Accepted)
	return res
}

func (p *Processor) processRecord(i int, rec StockUpdate, opts BatchOptions) ValidationOutcome {
	out := ValidationOutcome{Index: i, ItemID: rec.ID, Classification: Accepted, Alerts: []Alert{}}

	if rec.ID <= 0 {
		p.audit.Appendf("ERROR: Invalid ID detected in record %d: {id: %d, stock: %d}", i, rec.ID, rec.Stock)
		out.Classification = Rejected
		out.Alerts = append(out.Alerts, AlertInvalidID)
		return out
	}

	level := rec.Stock
	corrected := false
	if level < 0 {
		level = 0
		corrected = true
		out.Alerts = append(out.Alerts, AlertCorrected)
		p.audit.Appendf("WARNING: Negative stock corrected for Item %d.", rec.ID)
	}

	prev, clamped, ok := p.ledger.setStock(rec.ID, level)
	if !ok {
		p.audit.Appendf("ALERT: Item ID %d not found. Skipping update.", rec.ID)
		out.Classification = Rejected
		out.Alerts = append(out.Alerts, AlertNotFound)
		return out
	}
	if corrected || clamped {
		out.Classification = Corrected
	}
	out.PreviousStock = prev
	out.NewStock = level
	out.Delta = level - prev

	item, known := p.items.GetItem(rec.ID)
	name := item.Name
	if !known {
		name = "unlisted item"
	}
	p.audit.Appendf("Stock updated for %s: %d -> %d", name, prev, level)

	if level < opts.LowStockThreshold {
		out.Alerts = append(out.Alerts, AlertLowStock)
		p.audit.Appendf("CRITICAL: %s (%d) stock is low (%d). Reorder required.", name, rec.ID, level)
	}

	if !known {
		p.audit.Appendf("INFO: Item %d has no catalog price; price check skipped.", rec.ID)
		return out
	}
	if item.Price.GreaterThan(opts.MaxPrice) {
		p.ledger.Deactivate(rec.ID)
		out.Alerts = append(out.Alerts, AlertDeactivatedHighPrice)
		p.audit.Appendf("INFO: %s deactivated due to high price (%s).", name, item.Price.StringFixed(2))
	}
	return out
}
