package inventory

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrAlreadyTracked = errors.New("item already tracked")
	ErrInvalidItemID  = errors.New("invalid item id")
)

// Ledger owns stock levels and active flags. Stock only changes through a Processor.
type Ledger struct {
	entries map[int64]*StockEntry
}

func NewLedger() *Ledger {
	return &Ledger{entries: map[int64]*StockEntry{}}
}

// Track registers an item with its opening stock. Negative stock is clamped to zero.
func (l *Ledger) Track(itemID int64, stock int) error {
	if itemID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidItemID, itemID)
	}
	if _, ok := l.entries[itemID]; ok {
		return fmt.Errorf("%w: %d", ErrAlreadyTracked, itemID)
	}
	if stock < 0 {
		stock = 0
	}
	l.entries[itemID] = &StockEntry{ItemID: itemID, Stock: stock, Active: true}
	return nil
}

// Get returns a copy of the entry for id.
func (l *Ledger) Get(id int64) (StockEntry, bool) {
	e, ok := l.entries[id]
	if !ok {
		return StockEntry{}, false
	}
	return *e, true
}

// setStock overwrites the level for id, clamping negatives to zero.
// It returns the previous level and whether the value was corrected.
func (l *Ledger) setStock(id int64, level int) (prev int, corrected bool, ok bool) {
	e, found := l.entries[id]
	if !found {
		return 0, false, false
	}
	if level < 0 {
		level = 0
		corrected = true
	}
	prev = e.Stock
	e.Stock = level
	return prev, corrected, true
}

// Deactivate marks id inactive. There is no way back.
func (l *Ledger) Deactivate(id int64) bool {
	e, ok := l.entries[id]
	if !ok {
		return false
	}
	e.Active = false
	return true
}

func (l *Ledger) IsActive(id int64) bool {
	e, ok := l.entries[id]
	return ok && e.Active
}

// Entries returns copies of all entries ordered by item id.
func (l *Ledger) Entries() []StockEntry {
	out := make([]StockEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

func (l *Ledger) Len() int { return len(l.entries) }
