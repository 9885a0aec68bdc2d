package catalog

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrItemExists is returned when an item id is already present. The stored item is left untouched.
	ErrItemExists = errors.New("item already exists")
	// ErrInvalidItem is returned for non-positive ids or negative prices.
	ErrInvalidItem = errors.New("invalid item")
)

// Catalog owns the set of known items keyed by id.
type Catalog struct {
	items map[int64]Item
}

// New returns an empty Catalog.
func New() *Catalog {
	return &Catalog{items: map[int64]Item{}}
}

// AddItem inserts item unless its id is already taken.
func (c *Catalog) AddItem(item Item) error {
	if item.ID <= 0 {
		return fmt.Errorf("%w: id %d must be positive", ErrInvalidItem, item.ID)
	}
	if item.Price.IsNegative() {
		return fmt.Errorf("%w: price %s for id %d is negative", ErrInvalidItem, item.Price, item.ID)
	}
	if _, ok := c.items[item.ID]; ok {
		return fmt.Errorf("%w: id %d", ErrItemExists, item.ID)
	}
	if item.Kind == "" {
		item.Kind = KindStandard
	}
	c.items[item.ID] = item
	return nil
}

// GetItem looks up an item by id.
func (c *Catalog) GetItem(id int64) (Item, bool) {
	item, ok := c.items[id]
	return item, ok
}

// Items returns every item ordered by id.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) Len() int { return len(c.items) }
