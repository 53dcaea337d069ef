// Package portfolio implements FIFO lot accounting over a transaction ledger.
//
// ComputePositions replays Buy and Sell transactions into per-ticker
// positions valued at current prices. ComputeTimeline replays the same
// ledger day by day to build a value / cost-basis series for charting.
// Both are pure: they allocate their own state on every call and never
// mutate their inputs.
package portfolio

import (
	"fmt"
	"strings"
)

// AssetType classifies an instrument.
type AssetType string

const (
	Stock  AssetType = "Stock"
	Crypto AssetType = "Crypto"
)

// NormalizeAssetType maps any input to Stock or Crypto. Unknown values
// collapse to Stock.
func NormalizeAssetType(s string) AssetType {
	if strings.EqualFold(strings.TrimSpace(s), string(Crypto)) {
		return Crypto
	}
	return Stock
}

// TransactionType is either Buy or Sell.
type TransactionType string

const (
	Buy  TransactionType = "Buy"
	Sell TransactionType = "Sell"
)

// IsBuy reports whether t is a Buy, ignoring case and surrounding space.
// Every other value replays as a Sell.
func (t TransactionType) IsBuy() bool {
	return strings.EqualFold(strings.TrimSpace(string(t)), string(Buy))
}

// ParseTransactionType parses "buy" or "sell" case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	}
	return "", fmt.Errorf("invalid transaction type: %q", s)
}

// Transaction is a single ledger record.
type Transaction struct {
	ID        string          `json:"id"`
	Ticker    string          `json:"ticker"`
	Name      string          `json:"name"`
	AssetType AssetType       `json:"assetType"`
	Type      TransactionType `json:"type"`
	Quantity  Amount          `json:"quantity"`
	Price     Amount          `json:"price"`
	Date      string          `json:"date"`
	Time      string          `json:"time,omitempty"`
}

// PricePoint is the current market data for a ticker.
type PricePoint struct {
	CurrentPrice   Amount `json:"currentPrice"`
	PriceChange24h Amount `json:"priceChange24h"`
	Logo           string `json:"logo,omitempty"`
	Name           string `json:"name,omitempty"`
}

// Position is the aggregate holding of one ticker.
type Position struct {
	Ticker         string        `json:"ticker"`
	Name           string        `json:"name"`
	AssetType      AssetType     `json:"assetType"`
	Quantity       Amount        `json:"quantity"`
	TotalCost      Amount        `json:"totalCost"`
	AvgPrice       Amount        `json:"avgPrice"`
	CurrentPrice   Amount        `json:"currentPrice"`
	PriceChange24h Amount        `json:"priceChange24h"`
	TotalValue     Amount        `json:"totalValue"`
	PnL            Amount        `json:"pnl"`
	Transactions   []Transaction `json:"transactions"`
}

// TimelinePoint is one sample of the portfolio value series.
type TimelinePoint struct {
	Date      string `json:"date"`
	Value     Amount `json:"value"`
	CostBasis Amount `json:"costBasis"`
	Timestamp int64  `json:"timestamp"`
}

// NowLabel is the Date of the trailing timeline point.
const NowLabel = "Now"

// TotalCost sums the cost basis of positions.
func TotalCost(positions []Position) Amount {
	total := Zero
	for _, p := range positions {
		total = total.Add(p.TotalCost)
	}
	return total
}

// TotalValue sums the market value of positions.
func TotalValue(positions []Position) Amount {
	total := Zero
	for _, p := range positions {
		total = total.Add(p.TotalValue)
	}
	return total
}
