package tracker

import (
	"portfoliotracker/pkg/portfolio"
)

// GetPositions replays the ledger against the stored quotes.
func (c *Core) GetPositions() ([]portfolio.Position, error) {
	if cached, ok := c.positions.get(); ok {
		return cached, nil
	}
	txs, prices, err := c.ledgerAndPrices()
	if err != nil {
		return nil, err
	}
	positions := portfolio.Accountant{Location: c.location}.ComputePositions(txs, prices)
	c.positions.set(positions)
	return positions, nil
}

// GetSummary aggregates the current positions.
func (c *Core) GetSummary() (Summary, error) {
	positions, err := c.GetPositions()
	if err != nil {
		return Summary{}, err
	}
	return summarize(positions), nil
}

func summarize(positions []portfolio.Position) Summary {
	value := portfolio.TotalValue(positions)
	cost := portfolio.TotalCost(positions)
	pnl := value.Sub(cost)
	percent := portfolio.Zero
	if !cost.IsZero() {
		percent = portfolio.Amount{Decimal: pnl.Div(cost).Mul(portfolio.NewAmountFromInt(100)).Round(2)}
	}
	return Summary{
		TotalValue:    value,
		TotalCost:     cost,
		TotalPnL:      pnl,
		PnLPercent:    percent,
		PositionCount: len(positions),
	}
}

// GetTimeline returns the historical value series limited to window.
func (c *Core) GetTimeline(window portfolio.TimeWindow) ([]portfolio.TimelinePoint, error) {
	txs, prices, err := c.ledgerAndPrices()
	if err != nil {
		return nil, err
	}
	// Both series come from one read so "Now" matches the daily snapshots.
	positions := portfolio.Accountant{Location: c.location}.ComputePositions(txs, prices)
	replayer := portfolio.Replayer{Now: c.now, Location: c.location}
	return replayer.ComputeTimeline(txs, prices, positions, portfolio.TotalValue(positions), window), nil
}

func (c *Core) ledgerAndPrices() ([]portfolio.Transaction, map[string]portfolio.PricePoint, error) {
	txs, err := c.AllTransactions()
	if err != nil {
		return nil, nil, err
	}
	prices, err := c.GetAllLatestPrices()
	if err != nil {
		return nil, nil, err
	}
	return txs, prices, nil
}
