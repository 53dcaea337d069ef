package api

import "portfoliotracker/pkg/portfolio"

type pricePayload struct {
	Ticker    string `json:"ticker"`
	AssetType string `json:"assetType"`
}

type manualPricePayload struct {
	Ticker string           `json:"ticker"`
	Price  portfolio.Amount `json:"price"`
}

type transactionsResponse struct {
	Items  []portfolio.Transaction `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}
