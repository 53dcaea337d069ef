// Package mobile exposes the tracker through gomobile-friendly signatures:
// strings, bools and errors only, with structured values passed as JSON.
package mobile

import (
	"context"
	"encoding/json"
	"fmt"

	"portfoliotracker/pkg/portfolio"
	"portfoliotracker/pkg/tracker"
)

// Core wraps tracker.Core for gomobile bindings.
type Core struct {
	core *tracker.Core
}

// Open initializes the core with a database path.
func Open(dbPath string) (*Core, error) {
	core, err := tracker.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &Core{core: core}, nil
}

// Close releases resources.
func (c *Core) Close() error {
	if c == nil || c.core == nil {
		return nil
	}
	return c.core.Close()
}

// GetPositionsJSON returns the current positions as a JSON array.
func (c *Core) GetPositionsJSON() (string, error) {
	data, err := c.core.GetPositions()
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// GetSummaryJSON returns portfolio totals as JSON.
func (c *Core) GetSummaryJSON() (string, error) {
	data, err := c.core.GetSummary()
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// GetTimelineJSON returns the value series for window ("7d", "1m", "3m",
// "ytd", "1y" or "all"; empty means all).
func (c *Core) GetTimelineJSON(window string) (string, error) {
	w, err := portfolio.ParseTimeWindow(window)
	if err != nil {
		return "", err
	}
	data, err := c.core.GetTimeline(w)
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// GetTransactionsJSON queries transactions with optional filter JSON.
func (c *Core) GetTransactionsJSON(filterJSON string) (string, error) {
	filter := tracker.TransactionFilter{}
	if filterJSON != "" {
		if err := json.Unmarshal([]byte(filterJSON), &filter); err != nil {
			return "", fmt.Errorf("decode filter: %w", err)
		}
	}
	data, err := c.core.GetTransactions(filter)
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// AddTransactionJSON creates a transaction from JSON and returns id JSON.
func (c *Core) AddTransactionJSON(payloadJSON string) (string, error) {
	var payload tracker.TransactionInput
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return "", fmt.Errorf("decode transaction: %w", err)
	}
	id, err := c.core.AddTransaction(payload)
	if err != nil {
		return "", err
	}
	return marshalJSON(map[string]any{"id": id})
}

// DeleteTransaction deletes a transaction by id.
func (c *Core) DeleteTransaction(id string) (bool, error) {
	return c.core.DeleteTransaction(id)
}

// ManualUpdatePrice stores a price given as a decimal string.
func (c *Core) ManualUpdatePrice(ticker, price string) error {
	amount, err := portfolio.ParseAmount(price)
	if err != nil {
		return err
	}
	return c.core.ManualUpdatePrice(ticker, amount)
}

// RefreshPricesJSON fetches quotes for every held ticker.
func (c *Core) RefreshPricesJSON() (string, error) {
	updated, errs, err := c.core.RefreshPrices(context.Background())
	if err != nil {
		return "", err
	}
	if errs == nil {
		errs = []string{}
	}
	return marshalJSON(tracker.RefreshResult{Updated: updated, Errors: errs})
}

func marshalJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
