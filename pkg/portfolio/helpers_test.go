package portfolio

import "testing"

func tx(id, ticker string, typ TransactionType, qty, price, date string) Transaction {
	return Transaction{
		ID:        id,
		Ticker:    ticker,
		Name:      ticker,
		AssetType: Stock,
		Type:      typ,
		Quantity:  MustAmount(qty),
		Price:     MustAmount(price),
		Date:      date,
	}
}

func prices(kv ...string) map[string]PricePoint {
	out := map[string]PricePoint{}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = PricePoint{CurrentPrice: MustAmount(kv[i+1])}
	}
	return out
}

func assertAmount(t *testing.T, got Amount, want string, msg string) {
	t.Helper()
	if !got.Equal(MustAmount(want)) {
		t.Errorf("%s: got %s, want %s", msg, got, want)
	}
}

func findPosition(t *testing.T, positions []Position, ticker string) Position {
	t.Helper()
	for _, p := range positions {
		if p.Ticker == ticker {
			return p
		}
	}
	t.Fatalf("position %s not found in %d positions", ticker, len(positions))
	return Position{}
}
