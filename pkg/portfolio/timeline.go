package portfolio

import "time"

// TimelineLabelLayout formats the Date of daily timeline points.
const TimelineLabelLayout = "Jan 2, 2006"

// Replayer builds the historical value series.
type Replayer struct {
	// Now returns the invocation instant. Defaults to time.Now.
	Now func() time.Time
	// Location defines calendar days. Defaults to UTC.
	Location *time.Location
}

// ComputeTimeline replays txs one calendar day at a time and emits a point
// after each day holding the market value (at today's prices) and remaining
// cost basis of everything held at that point. A trailing "Now" point uses
// currentTotalValue and the cost basis of current. Points older than window
// are dropped. An empty ledger yields an empty series.
func ComputeTimeline(txs []Transaction, prices map[string]PricePoint, current []Position, currentTotalValue Amount, window TimeWindow) []TimelinePoint {
	return Replayer{}.ComputeTimeline(txs, prices, current, currentTotalValue, window)
}

// ComputeTimeline is the Replayer form of the package-level function.
func (r Replayer) ComputeTimeline(txs []Transaction, prices map[string]PricePoint, current []Position, currentTotalValue Amount, window TimeWindow) []TimelinePoint {
	if len(txs) == 0 {
		return []TimelinePoint{}
	}
	loc := r.location()
	order := ReplayOrder{Granularity: ByDay, Location: loc}

	var days []time.Time
	buckets := map[int64][]Transaction{}
	for _, t := range order.Sort(txs) {
		day := parseDay(t.Date, loc)
		key := day.Unix()
		if _, ok := buckets[key]; !ok {
			days = append(days, day)
		}
		buckets[key] = append(buckets[key], t)
	}

	points := make([]TimelinePoint, 0, len(days)+1)
	l := newLedger()
	for _, day := range days {
		for _, t := range buckets[day.Unix()] {
			l.apply(t)
		}
		value, costBasis := l.snapshot(prices)
		points = append(points, TimelinePoint{
			Date:      day.Format(TimelineLabelLayout),
			Value:     value,
			CostBasis: costBasis,
			Timestamp: day.UnixMilli(),
		})
	}

	now := r.now().In(loc)
	nowStamp := now.UnixMilli()
	// Future-dated transactions must not push "Now" behind the last day.
	if last := points[len(points)-1].Timestamp; last > nowStamp {
		nowStamp = last
	}
	points = append(points, TimelinePoint{
		Date:      NowLabel,
		Value:     currentTotalValue,
		CostBasis: TotalCost(current),
		Timestamp: nowStamp,
	})

	cutoff, ok := window.Cutoff(now)
	if !ok {
		return points
	}
	kept := points[:0]
	for _, p := range points {
		if p.Timestamp >= cutoff.UnixMilli() {
			kept = append(kept, p)
		}
	}
	return kept
}

// snapshot values every held ticker at its current price.
func (l *ledger) snapshot(prices map[string]PricePoint) (value, costBasis Amount) {
	value, costBasis = Zero, Zero
	l.each(func(b *book) {
		if !b.held() {
			return
		}
		value = value.Add(b.quantity.Mul(prices[b.ticker].CurrentPrice))
		costBasis = costBasis.Add(b.totalCost)
	})
	return value, costBasis
}

func (r Replayer) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r Replayer) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}
