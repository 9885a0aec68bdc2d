package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/imrishuroy/go-order-pricing/internal/audit"
	"github.com/imrishuroy/go-order-pricing/internal/catalog"
	"github.com/imrishuroy/go-order-pricing/internal/config"
	"github.com/imrishuroy/go-order-pricing/internal/idempotency"
	"github.com/imrishuroy/go-order-pricing/internal/inventory"
	"github.com/imrishuroy/go-order-pricing/internal/metrics"
	"github.com/imrishuroy/go-order-pricing/internal/orders"
	"github.com/imrishuroy/go-order-pricing/internal/patterns"
	"github.com/imrishuroy/go-order-pricing/internal/pricing"
	"github.com/imrishuroy/go-order-pricing/internal/promotions"
)

// ErrNoQueue is returned by EnqueueStockBatch when no event publisher is configured.
var ErrNoQueue = errors.New("no queue configured")

// Config holds the pricing and validation parameters of a Service.
type Config struct {
	ServiceName string
	Pricing     pricing.Options
	Batch       inventory.BatchOptions
	Tax         catalog.TaxPolicy
}

func DefaultConfig() Config {
	return Config{
		ServiceName: config.ServiceName,
		Pricing:     pricing.DefaultOptions(),
		Batch:       inventory.DefaultBatchOptions(),
		Tax:         catalog.DefaultTaxPolicy(),
	}
}

// Archive persists priced orders. *orders.Store implements it.
type Archive interface {
	Save(ctx context.Context, o pricing.PricedOrder) error
	SaveWithClaim(ctx context.Context, idempotencyTable string, claim idempotency.Record, o pricing.PricedOrder) error
	Get(ctx context.Context, orderID string) (*pricing.PricedOrder, error)
}

// IdempotencyStore tracks Idempotency-Key replays. *idempotency.Store implements it.
type IdempotencyStore interface {
	TableName() string
	Claim(key, orderID string) idempotency.Record
	Get(ctx context.Context, key string) (*idempotency.Record, error)
	Complete(ctx context.Context, key string, receipt []byte, status int) error
}

// Option configures optional infrastructure on a Service.
type Option func(*Service)

func WithArchive(a Archive) Option { return func(s *Service) { s.archive = a } }

func WithIdempotency(st IdempotencyStore) Option { return func(s *Service) { s.idem = st } }

func WithEvents(p EventPublisher) Option { return func(s *Service) { s.events = p } }

// Service owns one catalog, promotion registry, stock ledger, audit log and order ledger and
// serialises every operation on them. The core types are not safe for concurrent use.
type Service struct {
	mu        sync.Mutex
	catalog   *catalog.Catalog
	promos    *promotions.Registry
	stock     *inventory.Ledger
	audit     *audit.Log
	ledger    *orders.Ledger
	engine    *pricing.Engine
	processor *inventory.Processor

	cfg     Config
	archive Archive
	idem    IdempotencyStore
	events  EventPublisher
	breaker *patterns.CircuitBreakerWrapper
	tracer  trace.Tracer
	newID   func() string
}

// NewService builds a Service with empty state.
func NewService(cfg Config, opts ...Option) *Service {
	s := &Service{
		catalog: catalog.New(),
		promos:  promotions.NewRegistry(),
		stock:   inventory.NewLedger(),
		audit:   audit.NewLog(),
		ledger:  orders.NewLedger(),
		cfg:     cfg,
		breaker: patterns.NewCircuitBreaker("sqs-publish", cfg.ServiceName),
		tracer:  otel.Tracer(cfg.ServiceName),
		newID:   uuid.NewString,
	}
	s.engine = pricing.NewEngine(s.catalog, s.promos, cfg.Pricing)
	s.processor = inventory.NewProcessor(s.stock, s.catalog, s.audit)
	for _, o := range opts {
		o(s)
	}
	return s
}

// Seed loads the demo catalog, stock and promotions.
func (s *Service) Seed() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SeedDemoData(s.catalog, s.promos, s.stock)
}

// AddItem adds item to the catalog and starts tracking its stock.
func (s *Service) AddItem(item catalog.Item, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.catalog.AddItem(item); err != nil {
		return err
	}
	return s.stock.Track(item.ID, stock)
}

// BatchDefaults returns the configured stock-batch thresholds.
func (s *Service) BatchDefaults() inventory.BatchOptions { return s.cfg.Batch }

// PlaceResult is the outcome of PlaceOrder. Replay is set when the idempotency key was already
// used; Order is then the zero value unless the key was claimed concurrently. Archived is set
// only when the archive write (and the idempotency claim, if any) succeeded.
type PlaceResult struct {
	Order    pricing.PricedOrder
	Replay   *idempotency.Record
	Archived bool
}

// PlaceOrder prices req, records it unless it was rejected outright, archives it and publishes
// an order.priced event. Archive and publish failures are logged and do not fail the call.
func (s *Service) PlaceOrder(ctx context.Context, req pricing.Request, idempotencyKey string) (PlaceResult, error) {
	ctx, span := s.tracer.Start(ctx, "place_order")
	defer span.End()

	useIdem := idempotencyKey != "" && s.idem != nil && s.archive != nil
	if useIdem {
		rec, err := s.idem.Get(ctx, idempotencyKey)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "idempotency lookup failed")
			return PlaceResult{}, fmt.Errorf("idempotency lookup: %w", err)
		}
		if rec != nil {
			span.SetAttributes(attribute.Bool("idempotency.replay", true))
			return PlaceResult{Replay: rec}, nil
		}
	}

	if req.OrderID == "" {
		req.OrderID = s.newID()
	}

	s.mu.Lock()
	order := s.engine.PriceOrder(req)
	if !order.Status.Rejected() {
		s.ledger.Record(order)
	}
	s.mu.Unlock()

	observeOrder(order)
	span.SetAttributes(
		attribute.String("order.id", order.OrderID),
		attribute.String("order.status", string(order.Status)),
		attribute.String("order.final_total", order.FinalTotal.StringFixed(2)),
		attribute.String("promotion.status", string(order.Promotion.Status)),
	)

	fields := log.Fields{
		"order_id":    order.OrderID,
		"status":      order.Status,
		"final_total": order.FinalTotal.StringFixed(2),
	}
	if order.Status.Rejected() {
		log.WithFields(fields).Warn("Order rejected")
		return PlaceResult{Order: order}, nil
	}

	archived := false
	if err := s.archiveOrder(ctx, order, idempotencyKey, useIdem); err != nil {
		if errors.Is(err, orders.ErrKeyClaimed) {
			if rec, gerr := s.idem.Get(ctx, idempotencyKey); gerr == nil && rec != nil {
				log.WithFields(fields).Warn("Idempotency key claimed concurrently")
				return PlaceResult{Order: order, Replay: rec}, nil
			}
		}
		span.RecordError(err)
		log.WithFields(fields).WithError(err).Error("Failed to archive order")
	} else {
		archived = s.archive != nil
	}

	if err := s.publish(ctx, s.pricedEvent(order), map[string]string{
		"type":            EventOrderPriced,
		"order_id":        order.OrderID,
		"idempotency_key": idempotencyKey,
	}); err != nil {
		span.RecordError(err)
		log.WithFields(fields).WithError(err).Error("Failed to publish order event")
	}

	span.SetStatus(codes.Ok, "order priced")
	log.WithFields(fields).Info("Order priced")
	return PlaceResult{Order: order, Archived: archived}, nil
}

// CompleteIdempotency stores the receipt returned for key so replays can reuse it. It is a no-op
// unless res came from a PlaceOrder call that wrote the claim.
func (s *Service) CompleteIdempotency(ctx context.Context, key string, res PlaceResult, receipt []byte, status int) error {
	if key == "" || s.idem == nil || s.archive == nil || !res.Archived || res.Replay != nil {
		return nil
	}
	return s.idem.Complete(ctx, key, receipt, status)
}

// FindOrder returns the first order recorded under id, falling back to the archive.
func (s *Service) FindOrder(ctx context.Context, id string) (pricing.PricedOrder, bool, error) {
	s.mu.Lock()
	o, ok := s.ledger.Find(id)
	s.mu.Unlock()
	if ok || s.archive == nil {
		return o, ok, nil
	}

	archived, err := s.archive.Get(ctx, id)
	if err != nil {
		return pricing.PricedOrder{}, false, fmt.Errorf("archive lookup: %w", err)
	}
	if archived == nil {
		return pricing.PricedOrder{}, false, nil
	}
	return *archived, true, nil
}

// FindOrders returns every in-memory order recorded under id, duplicates included.
func (s *Service) FindOrders(id string) []pricing.PricedOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.FindAll(id)
}

// OrderSummary summarizes the first order recorded under id, falling back to the archive.
func (s *Service) OrderSummary(ctx context.Context, id string) (orders.Summary, bool, error) {
	s.mu.Lock()
	sum, ok := s.ledger.Summary(id)
	s.mu.Unlock()
	if ok || s.archive == nil {
		return sum, ok, nil
	}

	archived, err := s.archive.Get(ctx, id)
	if err != nil {
		return orders.Summary{}, false, fmt.Errorf("archive lookup: %w", err)
	}
	if archived == nil {
		return orders.Summary{}, false, nil
	}
	return orders.Summarize(*archived), true, nil
}

// OrderCount is the number of orders in the in-memory ledger.
func (s *Service) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Len()
}

// RegisterPromotion activates a promotion code.
func (s *Service) RegisterPromotion(code string, kind promotions.Kind, percent decimal.Decimal) promotions.RegisterResult {
	s.mu.Lock()
	res := s.promos.Register(code, kind, percent)
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"code":   code,
		"kind":   kind,
		"result": res,
	}).Info("Promotion registration")
	return res
}

// PromotionCodes lists the active promotion codes.
func (s *Service) PromotionCodes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promos.Codes()
}

// PublisherState is the state of the breaker guarding the event queue.
func (s *Service) PublisherState() string { return s.breaker.GetState() }

// ApplyStockBatch validates records and applies them to the stock ledger.
func (s *Service) ApplyStockBatch(ctx context.Context, records []inventory.StockUpdate, opts inventory.BatchOptions) inventory.BatchResult {
	_, span := s.tracer.Start(ctx, "apply_stock_batch")
	defer span.End()

	s.mu.Lock()
	res := s.processor.ProcessBatch(records, opts)
	levels := make(map[int64]int, len(res.Outcomes))
	for _, o := range res.Outcomes {
		if o.Classification != inventory.Rejected {
			levels[o.ItemID] = o.NewStock
		}
	}
	s.mu.Unlock()

	for _, o := range res.Outcomes {
		metrics.StockRecordsTotal.WithLabelValues(string(o.Classification)).Inc()
		for _, a := range o.Alerts {
			metrics.StockAlertsTotal.WithLabelValues(string(a)).Inc()
		}
	}
	for id, level := range levels {
		metrics.InventoryLevel.WithLabelValues(strconv.FormatInt(id, 10)).Set(float64(level))
	}

	span.SetAttributes(
		attribute.Int("batch.records", len(records)),
		attribute.Int("batch.accepted", res.Accepted),
	)
	log.WithFields(log.Fields{
		"records":  len(records),
		"accepted": res.Accepted,
	}).Info("Stock batch processed")
	return res
}

// EnqueueStockBatch queues msg for the worker and returns its batch id.
func (s *Service) EnqueueStockBatch(ctx context.Context, msg StockBatchMessage) (string, error) {
	if s.events == nil {
		return "", ErrNoQueue
	}
	if msg.BatchID == "" {
		msg.BatchID = s.newID()
	}
	if err := s.publish(ctx, msg, map[string]string{
		"type":     EventStockBatch,
		"batch_id": msg.BatchID,
	}); err != nil {
		return "", fmt.Errorf("enqueue stock batch: %w", err)
	}
	return msg.BatchID, nil
}

// StockReport builds the stock report as of at.
func (s *Service) StockReport(at time.Time) inventory.StockReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return inventory.BuildReport(s.stock, s.catalog, s.cfg.Tax, at)
}

// AuditLines renders the audit log.
func (s *Service) AuditLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audit.Lines()
}

func (s *Service) archiveOrder(ctx context.Context, o pricing.PricedOrder, key string, useIdem bool) error {
	if s.archive == nil {
		return nil
	}
	ctx, cancel := patterns.WithTimeout(ctx, patterns.DefaultTimeout)
	defer cancel()

	if useIdem {
		return s.archive.SaveWithClaim(ctx, s.idem.TableName(), s.idem.Claim(key, o.OrderID), o)
	}
	err := s.archive.Save(ctx, o)
	if errors.Is(err, orders.ErrAlreadyArchived) {
		log.WithField("order_id", o.OrderID).Warn("Order id already archived; keeping first write")
		return nil
	}
	return err
}

func (s *Service) publish(ctx context.Context, v any, attrs map[string]string) error {
	if s.events == nil {
		return nil
	}
	ctx, cancel := patterns.WithTimeout(ctx, patterns.DefaultTimeout)
	defer cancel()
	return s.breaker.Run(func() error {
		return s.events.SendJSON(ctx, v, attrs)
	})
}

func (s *Service) pricedEvent(o pricing.PricedOrder) OrderPricedEvent {
	return OrderPricedEvent{
		EventID:       s.newID(),
		Type:          EventOrderPriced,
		OrderID:       o.OrderID,
		Status:        string(o.Status),
		CustomerEmail: o.CustomerEmail,
		FinalTotal:    o.FinalTotal.StringFixed(2),
		Promotion:     o.Promotion.Code,
		MissingItems:  o.MissingItems(),
		OccurredAt:    o.CreatedAt,
	}
}

func observeOrder(o pricing.PricedOrder) {
	metrics.OrdersPricedTotal.WithLabelValues(string(o.Status)).Inc()
	if o.Promotion.Status != pricing.PromotionNone {
		metrics.PromotionOutcomesTotal.WithLabelValues(string(o.Promotion.Status)).Inc()
	}
	if !o.Status.Rejected() {
		metrics.OrderFinalTotal.Observe(o.FinalTotal.InexactFloat64())
	}
}
