package inventory

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-order-pricing/internal/audit"
	"github.com/imrishuroy/go-order-pricing/internal/catalog"
)

func newFixture(t *testing.T) (*Processor, *Ledger, *audit.Log) {
	t.Helper()
	c := catalog.New()
	require.NoError(t, c.AddItem(catalog.Item{ID: 101, Name: "The Pragmatic Programmer", Price: decimal.RequireFromString("45.00"), Kind: catalog.KindBook}))
	require.NoError(t, c.AddItem(catalog.Item{ID: 205, Name: "ProDev IDE License", Price: decimal.RequireFromString("999.00"), Kind: catalog.KindSoftware}))

	l := NewLedger()
	require.NoError(t, l.Track(101, 75))
	require.NoError(t, l.Track(205, 20))

	log := audit.NewLogWithClock(func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) })
	return NewProcessor(l, c, log), l, log
}

func TestProcessBatch_NegativeStockOnHighPriceItem(t *testing.T) {
	p, l, _ := newFixture(t)

	res := p.ProcessBatch([]StockUpdate{{ID: 205, Stock: -5}}, BatchOptions{
		LowStockThreshold: 0,
		MaxPrice:          decimal.RequireFromString("500.00"),
	})

	require.Len(t, res.Outcomes, 1)
	out := res.Outcomes[0]
	assert.Equal(t, 1, res.Accepted)
	assert.Equal(t, Corrected, out.Classification)
	assert.Equal(t, []Alert{AlertCorrected, AlertDeactivatedHighPrice}, out.Alerts)
	assert.Equal(t, 0, out.NewStock)
	assert.Equal(t, -20, out.Delta)

	e, _ := l.Get(205)
	assert.Equal(t, 0, e.Stock)
	assert.False(t, l.IsActive(205))
}

func TestProcessBatch_UnknownIDDoesNotCount(t *testing.T) {
	p, l, _ := newFixture(t)

	res := p.ProcessBatch([]StockUpdate{{ID: 300, Stock: 100}}, DefaultBatchOptions())

	assert.Equal(t, 0, res.Accepted)
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, Rejected, res.Outcomes[0].Classification)
	assert.True(t, res.Outcomes[0].HasAlert(AlertNotFound))
	assert.Equal(t, 2, l.Len())
}

func TestProcessBatch_InvalidID(t *testing.T) {
	p, _, _ := newFixture(t)

	res := p.ProcessBatch([]StockUpdate{{ID: 0, Stock: 10}, {ID: -4, Stock: 10}}, DefaultBatchOptions())

	assert.Equal(t, 0, res.Accepted)
	for _, o := range res.Outcomes {
		assert.Equal(t, []Alert{AlertInvalidID}, o.Alerts)
		assert.Equal(t, Rejected, o.Classification)
	}
}

func TestProcessBatch_MixedBatch(t *testing.T) {
	p, l, log := newFixture(t)

	res := p.ProcessBatch([]StockUpdate{
		{ID: 101, Stock: 20},
		{ID: 205, Stock: -5},
		{ID: 300, Stock: 100},
	}, BatchOptions{LowStockThreshold: 30, MaxPrice: decimal.RequireFromString("500.00")})

	assert.Equal(t, 2, res.Accepted)
	require.Len(t, res.Outcomes, 3)

	assert.Equal(t, Accepted, res.Outcomes[0].Classification)
	assert.Equal(t, []Alert{AlertLowStock}, res.Outcomes[0].Alerts)
	assert.Equal(t, -55, res.Outcomes[0].Delta)

	assert.Equal(t, []Alert{AlertCorrected, AlertLowStock, AlertDeactivatedHighPrice}, res.Outcomes[1].Alerts)
	assert.Equal(t, []Alert{AlertNotFound}, res.Outcomes[2].Alerts)

	assert.True(t, l.IsActive(101))
	assert.False(t, l.IsActive(205))

	counts := res.AlertCounts()
	assert.Equal(t, 2, counts[AlertLowStock])
	assert.Equal(t, 1, counts[AlertNotFound])

	lines := log.Lines()
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "[2026-01-02] Starting batch"))
	assert.Equal(t, "[2026-01-02] Finished processing 2 product records.", lines[len(lines)-1])
	assert.Contains(t, lines, "[2026-01-02] Stock updated for The Pragmatic Programmer: 75 -> 20")
}

func TestProcessBatch_DeactivationIsSticky(t *testing.T) {
	p, l, _ := newFixture(t)
	opts := BatchOptions{LowStockThreshold: 0, MaxPrice: decimal.RequireFromString("500.00")}

	p.ProcessBatch([]StockUpdate{{ID: 205, Stock: 10}}, opts)
	require.False(t, l.IsActive(205))

	opts.MaxPrice = decimal.RequireFromString("5000.00")
	res := p.ProcessBatch([]StockUpdate{{ID: 205, Stock: 40}}, opts)
	assert.Empty(t, res.Outcomes[0].Alerts)
	assert.False(t, l.IsActive(205))
}

func TestProcessBatch_AuditLogOnlyGrows(t *testing.T) {
	p, _, log := newFixture(t)
	p.ProcessBatch([]StockUpdate{{ID: 101, Stock: 60}}, DefaultBatchOptions())
	first := log.Len()
	p.ProcessBatch([]StockUpdate{{ID: 101, Stock: 61}}, DefaultBatchOptions())
	assert.Greater(t, log.Len(), first)
}

func TestBuildReport(t *testing.T) {
	c := catalog.New()
	require.NoError(t, c.AddItem(catalog.Item{ID: 205, Name: "IDE", Price: decimal.RequireFromString("999.00"), Kind: catalog.KindSoftware}))
	l := NewLedger()
	require.NoError(t, l.Track(205, 20))
	require.NoError(t, l.Track(900, 3))

	r := BuildReport(l, c, catalog.DefaultTaxPolicy(), time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 2, r.TotalItems)
	assert.Equal(t, "2026-05-06", r.ReportDate)
	require.Len(t, r.Details, 2)
	assert.True(t, r.Details[0].TaxedPrice.Equal(decimal.RequireFromString("1048.95")))
	assert.Equal(t, "", r.Details[1].Name)
	assert.True(t, r.Details[1].TaxedPrice.IsZero())

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"taxed_price":"1048.95"`)
	assert.Contains(t, string(b), `"taxed_price":"0.00"`)
}
