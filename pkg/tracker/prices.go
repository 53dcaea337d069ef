package tracker

import (
	"context"
	"fmt"

	"portfoliotracker/pkg/portfolio"
)

const manualSource = "manual"

// UpdateLatestPrice inserts or updates the stored quote for ticker.
func (c *Core) UpdateLatestPrice(ticker string, quote portfolio.PricePoint, source string) error {
	ticker = normalizeTicker(ticker)
	if ticker == "" {
		return invalidInput("ticker required")
	}
	_, err := c.db.Exec(`
		INSERT INTO latest_prices (ticker, current_price, price_change_24h, name, logo, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(ticker) DO UPDATE SET
			current_price = excluded.current_price,
			price_change_24h = excluded.price_change_24h,
			name = COALESCE(excluded.name, latest_prices.name),
			logo = COALESCE(excluded.logo, latest_prices.logo),
			source = excluded.source,
			updated_at = CURRENT_TIMESTAMP
	`, ticker, quote.CurrentPrice, quote.PriceChange24h, nullString(quote.Name), nullString(quote.Logo), source)
	if err != nil {
		return WrapError(ErrCodeDatabase, "update latest price", err)
	}
	c.positions.invalidate()
	return nil
}

// GetLatestPrices returns every stored quote ordered by ticker.
func (c *Core) GetLatestPrices() ([]LatestPrice, error) {
	rows, err := c.db.Query(`
		SELECT ticker, current_price, price_change_24h, name, logo, source, updated_at
		FROM latest_prices ORDER BY ticker
	`)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query latest prices", err)
	}
	defer rows.Close()

	result := []LatestPrice{}
	for rows.Next() {
		var p LatestPrice
		var name, logo, source, updatedAt nullableText
		if err := rows.Scan(&p.Ticker, &p.CurrentPrice, &p.PriceChange24h, &name, &logo, &source, &updatedAt); err != nil {
			return nil, WrapError(ErrCodeDatabase, "scan latest price", err)
		}
		p.Name, p.Logo, p.Source, p.UpdatedAt = string(name), string(logo), string(source), string(updatedAt)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "query latest prices", err)
	}
	return result, nil
}

// GetAllLatestPrices returns the stored quotes keyed by ticker, in the shape
// the accounting engine consumes.
func (c *Core) GetAllLatestPrices() (map[string]portfolio.PricePoint, error) {
	prices, err := c.GetLatestPrices()
	if err != nil {
		return nil, err
	}
	result := make(map[string]portfolio.PricePoint, len(prices))
	for _, p := range prices {
		result[p.Ticker] = p.PricePoint
	}
	return result, nil
}

// ManualUpdatePrice stores a manual price override. Any stored 24h change is
// reset since it no longer describes the new price.
func (c *Core) ManualUpdatePrice(ticker string, price portfolio.Amount) error {
	if price.IsNegative() {
		return invalidInput("price must not be negative")
	}
	if err := c.UpdateLatestPrice(ticker, portfolio.PricePoint{CurrentPrice: price}, manualSource); err != nil {
		return err
	}
	c.logger.Info("manual price update", "ticker", normalizeTicker(ticker), "price", price.String())
	return nil
}

// UpdatePrice fetches and stores the latest quote for a ticker.
func (c *Core) UpdatePrice(ctx context.Context, ticker string, assetType portfolio.AssetType) (QuoteResult, error) {
	result, err := c.FetchQuote(ctx, ticker, assetType)
	if err != nil {
		c.logger.Warn("quote fetch failed", "ticker", result.Ticker, "err", err)
		return result, WrapError(ErrCodeUpstream, "fetch quote", err)
	}
	if err := c.UpdateLatestPrice(result.Ticker, *result.Quote, result.Source); err != nil {
		return result, err
	}
	return result, nil
}

// RefreshPrices fetches and stores quotes for every currently held ticker.
// Failures are collected per ticker and never abort the refresh.
func (c *Core) RefreshPrices(ctx context.Context) (int, []string, error) {
	positions, err := c.GetPositions()
	if err != nil {
		return 0, nil, err
	}

	updated := 0
	var errs []string
	for _, p := range positions {
		if err := ctx.Err(); err != nil {
			return updated, errs, err
		}
		result, err := c.UpdatePrice(ctx, p.Ticker, p.AssetType)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", p.Ticker, result.Message))
			continue
		}
		updated++
	}
	c.logger.Info("prices refreshed", "updated", updated, "failed", len(errs))
	return updated, errs, nil
}

// nullableText scans a nullable TEXT or DATETIME column into a string.
type nullableText string

func (n *nullableText) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n = ""
	case string:
		*n = nullableText(v)
	case []byte:
		*n = nullableText(v)
	default:
		*n = nullableText(fmt.Sprint(v))
	}
	return nil
}
