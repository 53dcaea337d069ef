package portfolio

import (
	"testing"
	"time"
)

func fixedReplayer(now time.Time) Replayer {
	return Replayer{Now: func() time.Time { return now }}
}

func TestComputeTimeline_Empty(t *testing.T) {
	points := ComputeTimeline(nil, nil, nil, Zero, WindowAll)
	if points == nil || len(points) != 0 {
		t.Fatalf("expected empty series, got %#v", points)
	}
}

func TestComputeTimeline_DailySnapshots(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx("3", "AAPL", Sell, "12", "130", "2024-02-01"),
		tx("1", "AAPL", Buy, "10", "100", "2024-01-01"),
		tx("2", "AAPL", Buy, "5", "120", "2024-01-10"),
		tx("4", "BTC", Buy, "0.5", "30000", "2024-01-10"),
	}
	px := prices("AAPL", "150", "BTC", "60000")
	current := ComputePositions(txs, px)
	points := fixedReplayer(now).ComputeTimeline(txs, px, current, TotalValue(current), WindowAll)

	if len(points) != 4 {
		t.Fatalf("expected 3 days + Now, got %d", len(points))
	}

	want := []struct {
		date      string
		value     string
		costBasis string
	}{
		{"Jan 1, 2024", "1500", "1000"},
		{"Jan 10, 2024", "32250", "16600"},
		{"Feb 1, 2024", "30450", "15360"},
		{NowLabel, "30450", "15360"},
	}
	for i, w := range want {
		p := points[i]
		if p.Date != w.date {
			t.Errorf("point %d: date %q, want %q", i, p.Date, w.date)
		}
		assertAmount(t, p.Value, w.value, w.date+" value")
		assertAmount(t, p.CostBasis, w.costBasis, w.date+" cost basis")
	}
	if got := points[0].Timestamp; got != time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli() {
		t.Errorf("unexpected first timestamp %d", got)
	}
	if got := points[3].Timestamp; got != now.UnixMilli() {
		t.Errorf("expected Now timestamp %d, got %d", now.UnixMilli(), got)
	}
}

func TestComputeTimeline_MonotonicAndEndsWithNow(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx("1", "A", Buy, "1", "10", "2025-06-01"),
		tx("2", "B", Buy, "1", "10", "2024-12-31"),
		tx("3", "A", Sell, "1", "10", "2025-06-02"),
		tx("4", "C", Buy, "2", "5", "2025-01-15"),
		tx("5", "B", Buy, "1", "10", "2024-12-31"),
	}
	for _, w := range TimeWindows {
		points := fixedReplayer(now).ComputeTimeline(txs, nil, nil, Zero, w)
		if len(points) == 0 {
			t.Fatalf("%s: expected at least the Now point", w)
		}
		for i := 1; i < len(points); i++ {
			if points[i].Timestamp < points[i-1].Timestamp {
				t.Errorf("%s: timestamps decrease at %d", w, i)
			}
		}
		if last := points[len(points)-1]; last.Date != NowLabel {
			t.Errorf("%s: expected last point Now, got %q", w, last.Date)
		}
	}
}

func TestComputeTimeline_FutureDatedKeepsNowLast(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{tx("1", "A", Buy, "1", "10", "2024-06-01")}
	points := fixedReplayer(now).ComputeTimeline(txs, nil, nil, Zero, WindowAll)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[1].Timestamp < points[0].Timestamp {
		t.Errorf("Now point precedes a future day")
	}
}

func TestComputeTimeline_NowUsesCallerValues(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{tx("1", "A", Buy, "2", "10", "2024-01-01")}
	current := []Position{
		{Ticker: "A", TotalCost: MustAmount("20")},
		{Ticker: "Z", TotalCost: MustAmount("5.5")},
	}
	points := fixedReplayer(now).ComputeTimeline(txs, nil, current, MustAmount("999"), WindowAll)
	last := points[len(points)-1]
	assertAmount(t, last.Value, "999", "now value")
	assertAmount(t, last.CostBasis, "25.5", "now cost basis")
}

func TestComputeTimeline_UsesCurrentPricesForHistory(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{tx("1", "A", Buy, "2", "10", "2020-01-01")}
	points := fixedReplayer(now).ComputeTimeline(txs, prices("A", "50"), nil, Zero, WindowAll)
	assertAmount(t, points[0].Value, "100", "valued at today's price")
}

func TestComputeTimeline_SameDayBuyBeforeSell(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx("a", "A", Sell, "1", "15", "2024-01-01"),
		tx("b", "A", Buy, "3", "10", "2024-01-01"),
	}
	points := fixedReplayer(now).ComputeTimeline(txs, prices("A", "20"), nil, Zero, WindowAll)
	assertAmount(t, points[0].Value, "40", "value after same-day sell")
	assertAmount(t, points[0].CostBasis, "20", "cost after same-day sell")
}

func TestComputeTimeline_LiquidatedTickerLeavesSnapshot(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx("1", "A", Buy, "1", "10", "2024-01-01"),
		tx("2", "A", Sell, "1", "12", "2024-01-02"),
	}
	points := fixedReplayer(now).ComputeTimeline(txs, prices("A", "20"), nil, Zero, WindowAll)
	assertAmount(t, points[1].Value, "0", "value after liquidation")
	assertAmount(t, points[1].CostBasis, "0", "cost after liquidation")
}

func TestComputeTimeline_Windows(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx("1", "A", Buy, "1", "1", "2023-06-01"), // older than 1y
		tx("2", "A", Buy, "1", "1", "2023-06-20"), // within 1y
		tx("3", "A", Buy, "1", "1", "2024-01-01"), // ytd boundary
		tx("4", "A", Buy, "1", "1", "2024-03-20"), // within 3m
		tx("5", "A", Buy, "1", "1", "2024-05-20"), // within 1m
		tx("6", "A", Buy, "1", "1", "2024-06-10"), // within 7d
	}
	cases := []struct {
		window TimeWindow
		want   int
	}{
		{WindowAll, 7},
		{Window1Y, 6},
		{WindowYTD, 5},
		{Window3M, 4},
		{Window1M, 3},
		{Window7D, 2},
	}
	for _, c := range cases {
		points := fixedReplayer(now).ComputeTimeline(txs, nil, nil, Zero, c.window)
		if len(points) != c.want {
			t.Errorf("%s: got %d points, want %d", c.window, len(points), c.want)
		}
	}
}

func TestComputeTimeline_Location(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	txs := []Transaction{tx("1", "A", Buy, "1", "1", "2024-01-01")}
	r := Replayer{Now: func() time.Time { return now }, Location: loc}
	points := r.ComputeTimeline(txs, nil, nil, Zero, WindowAll)
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).UnixMilli()
	if points[0].Timestamp != want {
		t.Errorf("expected midnight in location, got %d want %d", points[0].Timestamp, want)
	}
}
