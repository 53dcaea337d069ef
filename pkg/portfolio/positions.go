package portfolio

import "time"

// Accountant computes positions from a transaction ledger.
type Accountant struct {
	// Location is used to interpret transaction dates. Defaults to UTC.
	Location *time.Location
}

// ComputePositions replays txs in ReplayOrder{ByInstant} and returns one
// Position per ticker whose remaining quantity is positive. Tickers missing
// from prices are valued at zero.
func ComputePositions(txs []Transaction, prices map[string]PricePoint) []Position {
	return Accountant{}.ComputePositions(txs, prices)
}

// ComputePositions is the Accountant form of the package-level function.
func (a Accountant) ComputePositions(txs []Transaction, prices map[string]PricePoint) []Position {
	order := ReplayOrder{Granularity: ByInstant, Location: a.Location}
	l := newLedger()
	for _, t := range order.Sort(txs) {
		l.apply(t)
	}

	positions := []Position{}
	l.each(func(b *book) {
		if !b.held() {
			return
		}
		positions = append(positions, b.position(prices[b.ticker]))
	})
	return positions
}

func (b *book) position(price PricePoint) Position {
	totalValue := b.quantity.Mul(price.CurrentPrice)
	return Position{
		Ticker:         b.ticker,
		Name:           b.name,
		AssetType:      b.assetType,
		Quantity:       b.quantity,
		TotalCost:      b.totalCost,
		AvgPrice:       b.totalCost.Div(b.quantity),
		CurrentPrice:   price.CurrentPrice,
		PriceChange24h: price.PriceChange24h,
		TotalValue:     totalValue,
		PnL:            totalValue.Sub(b.totalCost),
		Transactions:   b.txs,
	}
}
