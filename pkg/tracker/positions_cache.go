package tracker

import (
	"sync"

	"portfoliotracker/pkg/portfolio"
)

// positionsCache memoizes the accountant's output between ledger or price
// writes.
type positionsCache struct {
	mu        sync.RWMutex
	positions []portfolio.Position
	valid     bool
}

func newPositionsCache() *positionsCache {
	return &positionsCache{}
}

func (c *positionsCache) get() ([]portfolio.Position, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid {
		return nil, false
	}
	return clonePositions(c.positions), true
}

func (c *positionsCache) set(items []portfolio.Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions = clonePositions(items)
	c.valid = true
}

func (c *positionsCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions = nil
	c.valid = false
}

// clonePositions copies positions along with their transaction slices so
// callers never share backing arrays with the cache.
func clonePositions(items []portfolio.Position) []portfolio.Position {
	out := make([]portfolio.Position, len(items))
	for i, p := range items {
		p.Transactions = append([]portfolio.Transaction(nil), p.Transactions...)
		out[i] = p
	}
	return out
}
