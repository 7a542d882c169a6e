package ledger

import "slices"

// HistorySize is the number of recent transactions kept in memory per ledger.
const HistorySize = 10

// History is a bounded, newest-first cache of transactions.
type History struct {
	items    []Transaction
	capacity int
}

// NewHistory returns an empty history holding at most capacity items.
func NewHistory(capacity int) *History {
	return &History{
		items:    make([]Transaction, 0, capacity),
		capacity: capacity,
	}
}

// Push inserts tx at the front, evicting the oldest item first when full.
func (h *History) Push(tx Transaction) {
	if h.capacity <= 0 {
		return
	}
	if len(h.items) == h.capacity {
		h.items = h.items[:len(h.items)-1]
	}
	h.items = slices.Insert(h.items, 0, tx)
}

// Items returns a copy of the cached transactions, newest first.
func (h *History) Items() []Transaction {
	return slices.Clone(h.items)
}

// Len returns the number of cached transactions.
func (h *History) Len() int { return len(h.items) }
