package tracker

import (
	"database/sql"
	"strings"
	"time"

	"portfoliotracker/pkg/portfolio"
)

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// validateInput normalizes in into a ledger transaction. The ID is left empty.
func (c *Core) validateInput(in TransactionInput) (portfolio.Transaction, error) {
	ticker := normalizeTicker(in.Ticker)
	if ticker == "" {
		return portfolio.Transaction{}, invalidInput("ticker required")
	}
	typ, err := portfolio.ParseTransactionType(in.Type)
	if err != nil {
		return portfolio.Transaction{}, invalidInput("invalid transaction type: %q", in.Type)
	}
	if !in.Quantity.IsPositive() {
		return portfolio.Transaction{}, invalidInput("quantity must be positive")
	}
	if in.Price.IsNegative() {
		return portfolio.Transaction{}, invalidInput("price must not be negative")
	}

	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = c.todayISO()
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return portfolio.Transaction{}, invalidInput("invalid date %q, expected YYYY-MM-DD", in.Date)
	}

	clock, err := normalizeClock(in.Time)
	if err != nil {
		return portfolio.Transaction{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = ticker
	}

	return portfolio.Transaction{
		Ticker:    ticker,
		Name:      name,
		AssetType: portfolio.NormalizeAssetType(in.AssetType),
		Type:      typ,
		Quantity:  in.Quantity,
		Price:     in.Price,
		Date:      date,
		Time:      clock,
	}, nil
}

// normalizeClock accepts HH:MM or HH:MM:SS and returns HH:MM:SS.
func normalizeClock(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	for _, layout := range []string{timeLayout, "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(timeLayout), nil
		}
	}
	return "", invalidInput("invalid time %q, expected HH:MM[:SS]", value)
}

func nullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
