package portfolio

import (
	"sort"
	"time"
)

const (
	dateLayout = "2006-01-02"
)

var timeLayouts = []string{"15:04:05", "15:04"}

// Granularity selects how finely transaction instants are compared.
type Granularity int

const (
	// ByInstant orders on date plus time of day when present.
	ByInstant Granularity = iota
	// ByDay orders on the calendar date only.
	ByDay
)

// ReplayOrder is the total order in which transactions are replayed.
//
// The primary key is the transaction instant at the configured granularity.
// On ties a Buy sorts before a Sell, so a sell can always consume a lot
// recorded at the same instant. Remaining ties are broken by ticker and ID.
type ReplayOrder struct {
	Granularity Granularity
	Location    *time.Location
}

// Less reports whether a replays before b.
func (o ReplayOrder) Less(a, b Transaction) bool {
	ia, ib := o.instant(a), o.instant(b)
	if !ia.Equal(ib) {
		return ia.Before(ib)
	}
	if ra, rb := typeRank(a.Type), typeRank(b.Type); ra != rb {
		return ra < rb
	}
	if a.Ticker != b.Ticker {
		return a.Ticker < b.Ticker
	}
	return a.ID < b.ID
}

// Sort returns a sorted copy of txs. The input is not modified.
func (o ReplayOrder) Sort(txs []Transaction) []Transaction {
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return o.Less(sorted[i], sorted[j])
	})
	return sorted
}

func (o ReplayOrder) instant(t Transaction) time.Time {
	day := parseDay(t.Date, o.location())
	if o.Granularity == ByDay || t.Time == "" {
		return day
	}
	clock, ok := parseClock(t.Time)
	if !ok {
		return day
	}
	return day.Add(clock)
}

func (o ReplayOrder) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func typeRank(t TransactionType) int {
	if t.IsBuy() {
		return 0
	}
	return 1
}

// parseDay returns midnight of date in loc. Unparsable dates map to the zero
// instant so they replay first instead of failing the whole computation.
func parseDay(date string, loc *time.Location) time.Time {
	d, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}
	}
	return d
}

func parseClock(value string) (time.Duration, bool) {
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		return time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second, true
	}
	return 0, false
}
