package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-order-pricing/internal/checkout"
	"github.com/imrishuroy/go-order-pricing/internal/idempotency"
	"github.com/imrishuroy/go-order-pricing/internal/inventory"
	"github.com/imrishuroy/go-order-pricing/internal/orders"
	"github.com/imrishuroy/go-order-pricing/internal/pricing"
)

type capturePublisher struct {
	mu    sync.Mutex
	count int
}

func (p *capturePublisher) SendJSON(ctx context.Context, v any, attrs map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return nil
}

// dupArchive already holds every order id, so each claimed write is cancelled on the order put.
type dupArchive struct{}

func (dupArchive) Save(ctx context.Context, o pricing.PricedOrder) error {
	return orders.ErrAlreadyArchived
}

func (dupArchive) SaveWithClaim(ctx context.Context, table string, claim idempotency.Record, o pricing.PricedOrder) error {
	return orders.ErrAlreadyArchived
}

func (dupArchive) Get(ctx context.Context, id string) (*pricing.PricedOrder, error) {
	return nil, nil
}

type recordingIdempotency struct {
	completed []string
}

func (r *recordingIdempotency) TableName() string { return "idempotency" }

func (r *recordingIdempotency) Claim(key, orderID string) idempotency.Record {
	return idempotency.NewClaim(key, orderID, time.Now(), time.Hour)
}

func (r *recordingIdempotency) Get(ctx context.Context, key string) (*idempotency.Record, error) {
	return nil, nil
}

func (r *recordingIdempotency) Complete(ctx context.Context, key string, receipt []byte, status int) error {
	r.completed = append(r.completed, key)
	return nil
}

func newRouter(t *testing.T, opts ...checkout.Option) (*gin.Engine, *checkout.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := checkout.NewService(checkout.DefaultConfig(), opts...)
	require.NoError(t, svc.Seed())
	r := gin.New()
	RegisterRoutes(r, svc)
	return r, svc
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostOrder_Created(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPost, "/orders", `{
		"order_id": "ORD-1",
		"customer": {"name": "Alice Smith", "email": "alice@example.com"},
		"address": "123 Main St, Anytown, US",
		"items": [{"product_id": 101, "quantity": 1}],
		"promotion_code": "SAVE10"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "/orders/ORD-1", w.Header().Get("Location"))

	var o pricing.PricedOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
	assert.Equal(t, pricing.StatusCompleted, o.Status)
	assert.True(t, o.FinalTotal.Equal(decimal.RequireFromString("1087.50")))
	assert.Contains(t, w.Body.String(), `"shipping":"7.50"`)
	assert.Contains(t, w.Body.String(), `"final_total":"1087.50"`)

	w = do(r, http.MethodGet, "/orders/ORD-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var s orders.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, "alice@example.com", s.Customer)
	assert.True(t, s.FinalTotal.Equal(o.FinalTotal))
	assert.Contains(t, w.Body.String(), `"subtotal":"1200.00"`)
}

func TestPostOrder_UnarchivedClaimIsNotCompleted(t *testing.T) {
	idem := &recordingIdempotency{}
	r, _ := newRouter(t, checkout.WithArchive(dupArchive{}), checkout.WithIdempotency(idem))

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{
		"order_id": "ORD-DUP",
		"customer": {"email": "alice@example.com"},
		"address": "123 Main St, Anytown, US",
		"items": [{"product_id": 102, "quantity": 1}]
	}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "never-claimed")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Empty(t, idem.completed, "no receipt may be stored for a key whose claim was not written")
}

func TestGetOrder_AllListsDuplicates(t *testing.T) {
	r, _ := newRouter(t)
	for _, item := range []string{"102", "301"} {
		w := do(r, http.MethodPost, "/orders", `{
			"order_id": "TWIN",
			"customer": {"email": "alice@example.com"},
			"address": "123 Main St, Anytown, US",
			"items": [{"product_id": `+item+`, "quantity": 1}]
		}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := do(r, http.MethodGet, "/orders/TWIN?all=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		OrderID string                `json:"order_id"`
		Count   int                   `json:"count"`
		Orders  []pricing.PricedOrder `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Orders, 2)
	assert.Equal(t, int64(102), body.Orders[0].Lines[0].ItemID)
	assert.Equal(t, int64(301), body.Orders[1].Lines[0].ItemID)

	w = do(r, http.MethodGet, "/orders/TWIN", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subtotal":"25.00"`)

	w = do(r, http.MethodGet, "/orders/TWIN?detail=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"lines"`)

	w = do(r, http.MethodGet, "/orders/none?all=true", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPromotions(t *testing.T) {
	r, _ := newRouter(t)
	w := do(r, http.MethodPost, "/promotions", `{"code":"SAVE20","kind":"percent_discount","percent":20}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodGet, "/promotions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Codes []string `json:"codes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"FREESHIP", "SAVE10", "SAVE20"}, body.Codes)
}

func TestPostOrder_RejectedIs422(t *testing.T) {
	r, svc := newRouter(t)

	w := do(r, http.MethodPost, "/orders", `{"customer":{"email":"a@example.com"},"address":"1 Rd, Town, US","items":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "failed_no_items")

	w = do(r, http.MethodPost, "/orders", `{"address":"1 Rd, Town, US","items":[{"product_id":101,"quantity":1}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "failed_missing_customer")

	assert.Equal(t, 0, svc.OrderCount())
}

func TestPostOrder_UnknownProductStillCreated(t *testing.T) {
	pub := &capturePublisher{}
	r, _ := newRouter(t, checkout.WithEvents(pub))

	w := do(r, http.MethodPost, "/orders", `{
		"customer": {"email": "bob@example.com"},
		"ship_to": {"city": "Paris", "country": "FR"},
		"items": [{"product_id": 102, "quantity": 1}, {"product_id": 999, "quantity": 1}]
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var o pricing.PricedOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
	assert.Equal(t, pricing.StatusFailedProductNotFound, o.Status)
	assert.False(t, o.Domestic)
	assert.True(t, o.Shipping.Equal(decimal.RequireFromString("25")))
	assert.Equal(t, 1, pub.count)
}

func TestPostOrder_BadRequest(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPost, "/orders", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/orders", `{"customer":{"email":"a@example.com"},"address":"x, US","items":[{"product_id":101,"quantity":0}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "items[0].quantity")
}

func TestGetOrder_NotFound(t *testing.T) {
	r, _ := newRouter(t)
	w := do(r, http.MethodGet, "/orders/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "order_not_found")
}

func TestPostPromotion(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPost, "/promotions", `{"code":"SAVE20","kind":"percent_discount","percent":20}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/promotions", `{"code":"SAVE20","kind":"percent_discount","percent":20}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already_active")

	w = do(r, http.MethodPost, "/promotions", `{"code":"WEIRD","kind":"bogo"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, http.MethodPost, "/promotions", `{"code":"SAVE30","kind":"percent_discount"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInventoryBatchAndReport(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPost, "/inventory/batch", `{
		"low_stock_threshold": 30,
		"max_price": 500,
		"records": [{"id": 102, "stock": 20}, {"id": 205, "stock": -5}, {"id": 300, "stock": 100}, {"id": "x", "stock": 1}]
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res inventory.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Accepted)
	require.Len(t, res.Outcomes, 4)
	assert.Equal(t, []inventory.Alert{inventory.AlertInvalidID}, res.Outcomes[3].Alerts)

	w = do(r, http.MethodGet, "/inventory/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	var report inventory.StockReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 6, report.TotalItems)
	assert.Contains(t, w.Body.String(), `"taxed_price":"`)
	assert.NotContains(t, w.Body.String(), `"taxed_price":0`)

	w = do(r, http.MethodGet, "/inventory/audit", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Negative stock corrected")
}

func TestInventoryBatch_Async(t *testing.T) {
	r, _ := newRouter(t)
	w := do(r, http.MethodPost, "/inventory/batch?async=true", `{"records":[{"id":101,"stock":5}]}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	pub := &capturePublisher{}
	r, _ = newRouter(t, checkout.WithEvents(pub))
	w = do(r, http.MethodPost, "/inventory/batch?async=true", `{"records":[{"id":101,"stock":5}]}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "batch_id")
	assert.Contains(t, w.Body.String(), `"applied_by":"stock-worker"`)
	assert.Contains(t, w.Body.String(), "/inventory/report")
	assert.Equal(t, 1, pub.count)
}
