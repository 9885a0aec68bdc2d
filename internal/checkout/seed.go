package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-order-pricing/internal/catalog"
	"github.com/imrishuroy/go-order-pricing/internal/inventory"
	"github.com/imrishuroy/go-order-pricing/internal/promotions"
)

type seedItem struct {
	item  catalog.Item
	stock int
}

var demoItems = []seedItem{
	{catalog.Item{ID: 101, Name: "Laptop", Price: decimal.RequireFromString("1200.00"), Category: "Electronics"}, 75},
	{catalog.Item{ID: 102, Name: "Mouse", Price: decimal.RequireFromString("25.00"), Category: "Electronics"}, 200},
	{catalog.Item{ID: 201, Name: "Keyboard", Price: decimal.RequireFromString("75.00"), Category: "Electronics"}, 40},
	{catalog.Item{ID: 205, Name: "ProDev IDE License", Price: decimal.RequireFromString("999.00"), Category: "Software", Kind: catalog.KindSoftware}, 20},
	{catalog.Item{ID: 301, Name: "Coffee Mug", Price: decimal.RequireFromString("12.50"), Category: "Home Goods"}, 120},
	{catalog.Item{ID: 401, Name: "The Pragmatic Programmer", Price: decimal.RequireFromString("45.00"), Category: "Books", Kind: catalog.KindBook}, 75},
}

// SeedDemoData loads the demo catalog, stock levels and the FREESHIP and SAVE10 promotions.
func SeedDemoData(c *catalog.Catalog, p *promotions.Registry, l *inventory.Ledger) error {
	for _, s := range demoItems {
		if err := c.AddItem(s.item); err != nil {
			return fmt.Errorf("seed item %d: %w", s.item.ID, err)
		}
		if err := l.Track(s.item.ID, s.stock); err != nil {
			return fmt.Errorf("seed stock %d: %w", s.item.ID, err)
		}
	}
	if r := p.Register("FREESHIP", promotions.KindFreeShipping, decimal.Zero); r == promotions.Rejected {
		return fmt.Errorf("seed promotion FREESHIP: %s", r)
	}
	if r := p.Register("SAVE10", promotions.KindPercentDiscount, decimal.NewFromInt(10)); r == promotions.Rejected {
		return fmt.Errorf("seed promotion SAVE10: %s", r)
	}
	return nil
}
