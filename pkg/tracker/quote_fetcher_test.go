package tracker

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"portfoliotracker/pkg/portfolio"
)

const yahooBody = `{"chart":{"result":[{"meta":{
	"symbol":"AAPL","regularMarketPrice":150.0,"chartPreviousClose":120.0,
	"longName":"Apple Inc.","shortName":"Apple"}}],"error":null}}`

const geckoBody = `[{"id":"bitcoin","symbol":"btc","name":"Bitcoin",
	"image":"https://img.example/btc.png","current_price":60000.5,
	"price_change_percentage_24h":-2.5}]`

func newTestFetcher(client HTTPDoer) *quoteFetcher {
	return newQuoteFetcher(quoteFetcherOptions{
		CacheTTL:      time.Minute,
		FailThreshold: 2,
		FailWindow:    time.Minute,
		Cooldown:      time.Hour,
		HTTPClient:    client,
		CryptoIDs:     map[string]string{"pepe": "pepe"},
	})
}

func TestQuoteFetcherYahoo(t *testing.T) {
	client := &mockHTTPClient{routes: map[string]mockResponse{
		"finance/chart/AAPL": {http.StatusOK, yahooBody},
	}}
	qf := newTestFetcher(client)

	quote, source, err := qf.fetch(context.Background(), "AAPL", portfolio.Stock)
	assertNoError(t, err, "fetch")
	if source != serviceYahoo {
		t.Errorf("unexpected source %q", source)
	}
	assertAmount(t, quote.CurrentPrice, "150", "price")
	assertAmount(t, quote.PriceChange24h, "25", "24h change")
	if quote.Name != "Apple Inc." {
		t.Errorf("expected long name, got %q", quote.Name)
	}
}

func TestQuoteFetcherCoinGecko(t *testing.T) {
	client := &mockHTTPClient{routes: map[string]mockResponse{
		"ids=bitcoin": {http.StatusOK, geckoBody},
	}}
	qf := newTestFetcher(client)

	quote, source, err := qf.fetch(context.Background(), "BTC", portfolio.Crypto)
	assertNoError(t, err, "fetch")
	if source != serviceCoinGecko {
		t.Errorf("unexpected source %q", source)
	}
	assertAmount(t, quote.CurrentPrice, "60000.5", "price")
	assertAmount(t, quote.PriceChange24h, "-2.5", "24h change")
	if quote.Name != "Bitcoin" || quote.Logo != "https://img.example/btc.png" {
		t.Errorf("unexpected metadata %+v", quote)
	}
}

func TestQuoteFetcherCustomCryptoID(t *testing.T) {
	client := &mockHTTPClient{routes: map[string]mockResponse{
		"ids=pepe": {http.StatusOK, `[{"current_price":"0.0000123"}]`},
	}}
	qf := newTestFetcher(client)
	quote, _, err := qf.fetch(context.Background(), "PEPE", portfolio.Crypto)
	assertNoError(t, err, "fetch")
	assertAmount(t, quote.CurrentPrice, "0.0000123", "price from string")
}

func TestQuoteFetcherKeepsNumericPrecision(t *testing.T) {
	client := &mockHTTPClient{routes: map[string]mockResponse{
		"ids=pepe":          {http.StatusOK, `[{"current_price":0.000012345678901234567,"price_change_percentage_24h":1.100000000000000000001}]`},
		"finance/chart/BRK": {http.StatusOK, `{"chart":{"result":[{"meta":{"regularMarketPrice":1234567.123456789012}}]}}`},
	}}
	qf := newTestFetcher(client)

	quote, _, err := qf.fetch(context.Background(), "PEPE", portfolio.Crypto)
	assertNoError(t, err, "fetch crypto")
	assertAmount(t, quote.CurrentPrice, "0.000012345678901234567", "crypto price")
	assertAmount(t, quote.PriceChange24h, "1.100000000000000000001", "crypto change")

	quote, _, err = qf.fetch(context.Background(), "BRK", portfolio.Stock)
	assertNoError(t, err, "fetch equity")
	assertAmount(t, quote.CurrentPrice, "1234567.123456789012", "equity price")
}

func TestQuoteFetcherUnknownCryptoTicker(t *testing.T) {
	client := &mockHTTPClient{}
	qf := newTestFetcher(client)
	for i := 0; i < 3; i++ {
		_, _, err := qf.fetch(context.Background(), "NOPE", portfolio.Crypto)
		if !errors.Is(err, ErrUnknownTicker) {
			t.Fatalf("expected ErrUnknownTicker, got %v", err)
		}
	}
	if client.callCount() != 0 {
		t.Errorf("expected no HTTP calls, got %d", client.callCount())
	}
	if !qf.serviceAvailable(serviceCoinGecko) {
		t.Errorf("unknown tickers must not open the circuit")
	}
}

func TestQuoteFetcherNoData(t *testing.T) {
	client := &mockHTTPClient{routes: map[string]mockResponse{
		"finance/chart": {http.StatusOK, `{"chart":{"result":[],"error":null}}`},
		"ids=bitcoin":   {http.StatusOK, `[]`},
	}}
	qf := newTestFetcher(client)
	if _, _, err := qf.fetch(context.Background(), "ZZZZ", portfolio.Stock); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for equity, got %v", err)
	}
	if _, _, err := qf.fetch(context.Background(), "BTC", portfolio.Crypto); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for crypto, got %v", err)
	}
}

func TestQuoteFetcherCache(t *testing.T) {
	client := &mockHTTPClient{routes: map[string]mockResponse{
		"finance/chart/AAPL": {http.StatusOK, yahooBody},
	}}
	qf := newTestFetcher(client)
	for i := 0; i < 3; i++ {
		if _, _, err := qf.fetch(context.Background(), "AAPL", portfolio.Stock); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if client.callCount() != 1 {
		t.Errorf("expected 1 HTTP call, got %d", client.callCount())
	}

	qf.cache[cacheKey("AAPL", portfolio.Stock)] = cacheEntry{ts: time.Now().Add(-time.Hour)}
	if _, _, ok := qf.getCached("AAPL", portfolio.Stock); ok {
		t.Errorf("expected cache miss after expiry")
	}
}

func TestQuoteFetcherCircuitBreaker(t *testing.T) {
	client := &mockHTTPClient{routes: map[string]mockResponse{
		"finance/chart": {http.StatusInternalServerError, ""},
	}}
	qf := newTestFetcher(client)

	for i := 0; i < 2; i++ {
		if _, _, err := qf.fetch(context.Background(), "AAPL", portfolio.Stock); err == nil {
			t.Fatalf("expected upstream error")
		}
	}
	_, _, err := qf.fetch(context.Background(), "AAPL", portfolio.Stock)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if client.callCount() != 2 {
		t.Errorf("expected cooldown to skip HTTP, got %d calls", client.callCount())
	}
	if !qf.serviceAvailable(serviceCoinGecko) {
		t.Errorf("other services must stay available")
	}

	qf.recordServiceSuccess(serviceYahoo)
	if !qf.serviceAvailable(serviceYahoo) {
		t.Errorf("expected service available after success")
	}

	qf.serviceState[serviceYahoo] = &serviceState{failCount: 5, firstFailAt: time.Now().Add(-2 * time.Minute)}
	qf.recordServiceFailure(serviceYahoo)
	if qf.serviceState[serviceYahoo].failCount != 1 {
		t.Errorf("expected fail count reset outside window, got %d", qf.serviceState[serviceYahoo].failCount)
	}
}
