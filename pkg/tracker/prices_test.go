package tracker

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"portfoliotracker/pkg/portfolio"
)

func TestLatestPricesRoundTrip(t *testing.T) {
	core := setupTestDB(t)
	err := core.UpdateLatestPrice("btc", portfolio.PricePoint{
		CurrentPrice:   portfolio.MustAmount("60000.12345678"),
		PriceChange24h: portfolio.MustAmount("-1.5"),
		Name:           "Bitcoin",
		Logo:           "logo.png",
	}, "test")
	assertNoError(t, err, "update")

	prices, err := core.GetAllLatestPrices()
	assertNoError(t, err, "get")
	p, ok := prices["BTC"]
	if !ok {
		t.Fatalf("expected BTC in %v", prices)
	}
	assertAmount(t, p.CurrentPrice, "60000.12345678", "price")
	assertAmount(t, p.PriceChange24h, "-1.5", "change")
	if p.Name != "Bitcoin" || p.Logo != "logo.png" {
		t.Errorf("unexpected metadata %+v", p)
	}

	// A manual override keeps the stored name and logo.
	setPrice(t, core, "BTC", "1")
	list, err := core.GetLatestPrices()
	assertNoError(t, err, "list")
	if len(list) != 1 || list[0].Source != manualSource || list[0].Name != "Bitcoin" {
		t.Errorf("unexpected list %+v", list)
	}
	assertAmount(t, list[0].CurrentPrice, "1", "manual price")
	assertAmount(t, list[0].PriceChange24h, "0", "manual change reset")
}

func TestManualUpdatePriceValidation(t *testing.T) {
	core := setupTestDB(t)
	if err := core.ManualUpdatePrice("AAPL", portfolio.MustAmount("-1")); !IsErrorCode(err, ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for negative price, got %v", err)
	}
	if err := core.ManualUpdatePrice(" ", portfolio.MustAmount("1")); !IsErrorCode(err, ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for empty ticker, got %v", err)
	}
}

func TestRefreshPrices(t *testing.T) {
	client := &mockHTTPClient{routes: map[string]mockResponse{
		"finance/chart/AAPL": {http.StatusOK, yahooBody},
		"ids=bitcoin":        {http.StatusOK, geckoBody},
	}}
	core := setupTestDB(t, func(o *Options) { o.HTTPClient = client })

	addTx(t, core, "AAPL", "buy", "2", "100", "2024-01-01")
	addTx(t, core, "MSFT", "buy", "1", "300", "2024-01-01")
	addTx(t, core, "GONE", "buy", "1", "1", "2024-01-01")
	addTx(t, core, "GONE", "sell", "1", "1", "2024-01-02")
	_, err := core.AddTransaction(TransactionInput{
		Ticker: "BTC", AssetType: "crypto", Type: "buy",
		Quantity: portfolio.MustAmount("0.5"), Price: portfolio.MustAmount("30000"), Date: "2024-01-01",
	})
	assertNoError(t, err, "add crypto")

	updated, errs, err := core.RefreshPrices(context.Background())
	assertNoError(t, err, "refresh")
	if updated != 2 {
		t.Errorf("expected 2 updated, got %d", updated)
	}
	if len(errs) != 1 || !strings.HasPrefix(errs[0], "MSFT:") {
		t.Errorf("expected one MSFT error, got %v", errs)
	}
	for _, call := range client.calls {
		if strings.Contains(call, "GONE") {
			t.Errorf("liquidated ticker was refreshed")
		}
	}

	positions, err := core.GetPositions()
	assertNoError(t, err, "positions")
	for _, p := range positions {
		if p.Ticker == "AAPL" {
			assertAmount(t, p.TotalValue, "300", "AAPL revalued")
		}
	}
}

func TestUpdatePriceUpstreamError(t *testing.T) {
	core := setupTestDB(t, func(o *Options) { o.HTTPClient = &mockHTTPClient{} })
	_, err := core.UpdatePrice(context.Background(), "AAPL", portfolio.Stock)
	if !IsErrorCode(err, ErrCodeUpstream) {
		t.Errorf("expected UPSTREAM_ERROR, got %v", err)
	}
}
