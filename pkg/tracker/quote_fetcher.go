package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"portfoliotracker/pkg/portfolio"
)

const (
	defaultEquityURL = "https://query1.finance.yahoo.com/v8/finance/chart/"
	defaultCryptoURL = "https://api.coingecko.com/api/v3/coins/markets"

	serviceYahoo     = "Yahoo Finance"
	serviceCoinGecko = "CoinGecko"
)

// Quote fetcher errors. Use errors.Is() to check for these conditions.
var (
	// ErrNoData indicates the data source returned no price for the ticker.
	ErrNoData = errors.New("no price data available")
	// ErrUnknownTicker indicates a crypto ticker with no CoinGecko id.
	ErrUnknownTicker = errors.New("unknown ticker")
	// ErrCircuitOpen indicates the service is cooling down after failures.
	ErrCircuitOpen = errors.New("service cooling down")
)

// DefaultCryptoIDs maps common crypto tickers to CoinGecko coin ids.
var DefaultCryptoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"LTC":   "litecoin",
	"MATIC": "matic-network",
	"USDT":  "tether",
	"USDC":  "usd-coin",
}

// JSON paths into the quote payloads.
const (
	yahooPricePath     = "$.chart.result[0].meta.regularMarketPrice"
	yahooPrevClosePath = "$.chart.result[0].meta.chartPreviousClose"
	yahooLongNamePath  = "$.chart.result[0].meta.longName"
	yahooShortNamePath = "$.chart.result[0].meta.shortName"

	geckoPricePath  = "$[0].current_price"
	geckoChangePath = "$[0].price_change_percentage_24h"
	geckoNamePath   = "$[0].name"
	geckoImagePath  = "$[0].image"
)

// HTTPDoer is an interface for making HTTP requests. It enables dependency
// injection for testing without network calls.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type quoteFetcherOptions struct {
	Logger        *slog.Logger
	CacheTTL      time.Duration
	FailThreshold int
	FailWindow    time.Duration
	Cooldown      time.Duration
	HTTPClient    HTTPDoer
	CryptoIDs     map[string]string
	EquityURL     string
	CryptoURL     string
}

type quoteFetcher struct {
	logger        *slog.Logger
	cacheTTL      time.Duration
	failThreshold int
	failWindow    time.Duration
	cooldown      time.Duration
	client        HTTPDoer
	cryptoIDs     map[string]string
	equityURL     string
	cryptoURL     string

	// cacheMu guards cache; circuitMu guards serviceState.
	cacheMu      sync.RWMutex
	cache        map[string]cacheEntry
	circuitMu    sync.Mutex
	serviceState map[string]*serviceState
}

type cacheEntry struct {
	quote  portfolio.PricePoint
	source string
	ts     time.Time
}

type serviceState struct {
	failCount     int
	firstFailAt   time.Time
	cooldownUntil time.Time
}

func newQuoteFetcher(opts quoteFetcherOptions) *quoteFetcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	ids := make(map[string]string, len(DefaultCryptoIDs)+len(opts.CryptoIDs))
	for k, v := range DefaultCryptoIDs {
		ids[k] = v
	}
	for k, v := range opts.CryptoIDs {
		ids[normalizeTicker(k)] = strings.TrimSpace(v)
	}
	equityURL := opts.EquityURL
	if equityURL == "" {
		equityURL = defaultEquityURL
	}
	cryptoURL := opts.CryptoURL
	if cryptoURL == "" {
		cryptoURL = defaultCryptoURL
	}
	return &quoteFetcher{
		logger:        logger,
		cacheTTL:      opts.CacheTTL,
		failThreshold: defaultInt(opts.FailThreshold, 3),
		failWindow:    opts.FailWindow,
		cooldown:      opts.Cooldown,
		client:        client,
		cryptoIDs:     ids,
		equityURL:     equityURL,
		cryptoURL:     cryptoURL,
		cache:         map[string]cacheEntry{},
		serviceState:  map[string]*serviceState{},
	}
}

// FetchQuote fetches the latest quote for ticker without storing it.
func (c *Core) FetchQuote(ctx context.Context, ticker string, assetType portfolio.AssetType) (QuoteResult, error) {
	ticker = normalizeTicker(ticker)
	quote, source, err := c.quotes.fetch(ctx, ticker, assetType)
	if err != nil {
		return QuoteResult{Ticker: ticker, Message: err.Error()}, err
	}
	return QuoteResult{
		Ticker:  ticker,
		Quote:   &quote,
		Source:  source,
		Message: fmt.Sprintf("quote fetched (source: %s)", source),
	}, nil
}

func (qf *quoteFetcher) fetch(ctx context.Context, ticker string, assetType portfolio.AssetType) (portfolio.PricePoint, string, error) {
	if quote, source, ok := qf.getCached(ticker, assetType); ok {
		return quote, source, nil
	}

	service := serviceYahoo
	fetch := qf.yahooQuote
	if assetType == portfolio.Crypto {
		service = serviceCoinGecko
		fetch = qf.coinGeckoQuote
	}
	if !qf.serviceAvailable(service) {
		return portfolio.PricePoint{}, "", fmt.Errorf("%s: %w", service, ErrCircuitOpen)
	}

	qf.logger.Info("fetching quote", "ticker", ticker, "assetType", assetType, "service", service)
	quote, err := fetch(ctx, ticker)
	if err != nil {
		// Unknown tickers say nothing about the service's health.
		if !errors.Is(err, ErrUnknownTicker) {
			qf.recordServiceFailure(service)
		}
		return portfolio.PricePoint{}, "", fmt.Errorf("%s: %w", service, err)
	}
	qf.recordServiceSuccess(service)
	qf.setCached(ticker, assetType, quote, service)
	return quote, service, nil
}

func (qf *quoteFetcher) yahooQuote(ctx context.Context, ticker string) (portfolio.PricePoint, error) {
	body, err := qf.httpGet(ctx, qf.equityURL+url.PathEscape(ticker)+"?interval=1d&range=1d")
	if err != nil {
		return portfolio.PricePoint{}, err
	}
	jobj, err := decodeQuote(body)
	if err != nil {
		return portfolio.PricePoint{}, err
	}

	price, err := lookupDecimal(jobj, yahooPricePath)
	if err != nil || !price.IsPositive() {
		return portfolio.PricePoint{}, ErrNoData
	}
	quote := portfolio.PricePoint{CurrentPrice: price}
	if prev, err := lookupDecimal(jobj, yahooPrevClosePath); err == nil && prev.IsPositive() {
		quote.PriceChange24h = portfolio.Amount{Decimal: price.Sub(prev).Div(prev).Mul(portfolio.NewAmountFromInt(100)).Round(4)}
	}
	quote.Name = lookupString(jobj, yahooLongNamePath)
	if quote.Name == "" {
		quote.Name = lookupString(jobj, yahooShortNamePath)
	}
	return quote, nil
}

func (qf *quoteFetcher) coinGeckoQuote(ctx context.Context, ticker string) (portfolio.PricePoint, error) {
	id, ok := qf.cryptoIDs[ticker]
	if !ok || id == "" {
		return portfolio.PricePoint{}, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	query := url.Values{"vs_currency": {"usd"}, "ids": {id}}
	body, err := qf.httpGet(ctx, qf.cryptoURL+"?"+query.Encode())
	if err != nil {
		return portfolio.PricePoint{}, err
	}
	jobj, err := decodeQuote(body)
	if err != nil {
		return portfolio.PricePoint{}, err
	}

	price, err := lookupDecimal(jobj, geckoPricePath)
	if err != nil {
		return portfolio.PricePoint{}, ErrNoData
	}
	quote := portfolio.PricePoint{
		CurrentPrice: price,
		Name:         lookupString(jobj, geckoNamePath),
		Logo:         lookupString(jobj, geckoImagePath),
	}
	if change, err := lookupDecimal(jobj, geckoChangePath); err == nil {
		quote.PriceChange24h = change
	}
	return quote, nil
}

// decodeQuote keeps numbers as json.Number so prices reach Amount without a
// float64 round trip.
func decodeQuote(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	return jobj, nil
}

// lookup evaluates a JSON path. jsonpath may return either a single value or
// a list holding it, so lists are unwrapped to their first element.
func lookup(jobj any, path string) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, err
	}
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, ErrNoData
		}
		jval = jlist[0]
	}
	return jval, nil
}

func lookupDecimal(jobj any, path string) (portfolio.Amount, error) {
	jval, err := lookup(jobj, path)
	if err != nil {
		return portfolio.Zero, err
	}
	switch v := jval.(type) {
	case json.Number:
		return portfolio.ParseAmount(v.String())
	case string:
		return portfolio.ParseAmount(v)
	}
	return portfolio.Zero, fmt.Errorf("%s: not a number: %v", path, jval)
}

func lookupString(jobj any, path string) string {
	jval, err := lookup(jobj, path)
	if err != nil {
		return ""
	}
	s, _ := jval.(string)
	return strings.TrimSpace(s)
}

func (qf *quoteFetcher) getCached(ticker string, assetType portfolio.AssetType) (portfolio.PricePoint, string, bool) {
	key := cacheKey(ticker, assetType)
	qf.cacheMu.RLock()
	defer qf.cacheMu.RUnlock()
	entry, ok := qf.cache[key]
	if !ok {
		return portfolio.PricePoint{}, "", false
	}
	if time.Since(entry.ts) <= qf.cacheTTL {
		return entry.quote, entry.source, true
	}
	return portfolio.PricePoint{}, "", false
}

func (qf *quoteFetcher) setCached(ticker string, assetType portfolio.AssetType, quote portfolio.PricePoint, source string) {
	key := cacheKey(ticker, assetType)
	qf.cacheMu.Lock()
	defer qf.cacheMu.Unlock()
	qf.cache[key] = cacheEntry{quote: quote, source: source, ts: time.Now()}
}

func cacheKey(ticker string, assetType portfolio.AssetType) string {
	return fmt.Sprintf("%s|%s", ticker, assetType)
}

func (qf *quoteFetcher) serviceAvailable(service string) bool {
	qf.circuitMu.Lock()
	defer qf.circuitMu.Unlock()
	state, ok := qf.serviceState[service]
	if !ok {
		return true
	}
	return time.Now().After(state.cooldownUntil)
}

func (qf *quoteFetcher) recordServiceFailure(service string) {
	qf.circuitMu.Lock()
	defer qf.circuitMu.Unlock()
	state := qf.serviceState[service]
	now := time.Now()
	if state == nil {
		state = &serviceState{firstFailAt: now}
		qf.serviceState[service] = state
	}
	if now.Sub(state.firstFailAt) > qf.failWindow {
		state.failCount = 0
		state.firstFailAt = now
	}
	state.failCount++
	if state.failCount >= qf.failThreshold {
		state.cooldownUntil = now.Add(qf.cooldown)
	}
}

func (qf *quoteFetcher) recordServiceSuccess(service string) {
	qf.circuitMu.Lock()
	defer qf.circuitMu.Unlock()
	delete(qf.serviceState, service)
}

// maxResponseSize limits external API responses to 1MB.
const maxResponseSize = 1 << 20

func (qf *quoteFetcher) httpGet(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")
	resp, err := qf.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
}
