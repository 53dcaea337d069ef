package tracker

import "portfoliotracker/pkg/portfolio"

// TransactionInput defines inputs to add or update a transaction. Fields use
// the same JSON names as portfolio.Transaction.
type TransactionInput struct {
	Ticker    string           `json:"ticker"`
	Name      string           `json:"name"`
	AssetType string           `json:"assetType"`
	Type      string           `json:"type"`
	Quantity  portfolio.Amount `json:"quantity"`
	Price     portfolio.Amount `json:"price"`
	Date      string           `json:"date"`
	Time      string           `json:"time"`
}

// TransactionFilter controls transaction queries.
type TransactionFilter struct {
	Ticker          string `json:"ticker"`
	AssetType       string `json:"assetType"`
	TransactionType string `json:"type"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	Limit           int    `json:"limit"`
	Offset          int    `json:"offset"`
}

// LatestPrice is a stored quote with its provenance.
type LatestPrice struct {
	Ticker string `json:"ticker"`
	portfolio.PricePoint
	Source    string `json:"source"`
	UpdatedAt string `json:"updatedAt"`
}

// Summary aggregates the current positions.
type Summary struct {
	TotalValue    portfolio.Amount `json:"totalValue"`
	TotalCost     portfolio.Amount `json:"totalCost"`
	TotalPnL      portfolio.Amount `json:"totalPnl"`
	PnLPercent    portfolio.Amount `json:"pnlPercent"`
	PositionCount int              `json:"positionCount"`
}

// QuoteResult reports the outcome of a single quote fetch.
type QuoteResult struct {
	Ticker  string                `json:"ticker"`
	Quote   *portfolio.PricePoint `json:"quote"`
	Source  string                `json:"source,omitempty"`
	Message string                `json:"message"`
}

// RefreshResult reports the outcome of RefreshPrices.
type RefreshResult struct {
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}
