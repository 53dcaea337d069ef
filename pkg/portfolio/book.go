package portfolio

// lot is the unconsumed remainder of one Buy.
type lot struct {
	remaining Amount
	price     Amount
}

// book is the FIFO accumulator for a single ticker.
type book struct {
	ticker    string
	name      string
	assetType AssetType
	quantity  Amount
	totalCost Amount
	lots      []lot
	// head indexes the oldest lot that may still hold units. Lots before it
	// are exhausted and never revisited.
	head int
	txs  []Transaction
}

func newBook(t Transaction) *book {
	name := t.Name
	if name == "" {
		name = t.Ticker
	}
	return &book{
		ticker:    t.Ticker,
		name:      name,
		assetType: NormalizeAssetType(string(t.AssetType)),
		quantity:  Zero,
		totalCost: Zero,
	}
}

// apply replays one transaction into the book.
func (b *book) apply(t Transaction) {
	b.txs = append(b.txs, t)
	if t.Type.IsBuy() {
		b.buy(t.Quantity, t.Price)
		return
	}
	b.sell(t.Quantity)
}

func (b *book) buy(quantity, price Amount) {
	b.quantity = b.quantity.Add(quantity)
	b.totalCost = b.totalCost.Add(quantity.Mul(price))
	b.lots = append(b.lots, lot{remaining: quantity, price: price})
}

// sell consumes lots oldest first. Only the FIFO cost of consumed units
// leaves totalCost; the sell price plays no part. Selling more than is held
// drives quantity negative and removes only the cost that was available.
func (b *book) sell(quantity Amount) {
	costRemoved := Zero
	left := quantity
	for b.head < len(b.lots) && left.IsPositive() {
		l := &b.lots[b.head]
		if !l.remaining.IsPositive() {
			b.head++
			continue
		}
		taken := left.Min(l.remaining)
		costRemoved = costRemoved.Add(taken.Mul(l.price))
		l.remaining = l.remaining.Sub(taken)
		left = left.Sub(taken)
		if !l.remaining.IsPositive() {
			b.head++
		}
	}
	b.quantity = b.quantity.Sub(quantity)
	b.totalCost = b.totalCost.Sub(costRemoved)
}

func (b *book) held() bool {
	return b.quantity.IsPositive()
}

// ledger holds the books of every ticker seen so far, in first-seen order.
type ledger struct {
	books map[string]*book
	order []string
}

func newLedger() *ledger {
	return &ledger{books: map[string]*book{}}
}

func (l *ledger) apply(t Transaction) {
	b, ok := l.books[t.Ticker]
	if !ok {
		b = newBook(t)
		l.books[t.Ticker] = b
		l.order = append(l.order, t.Ticker)
	}
	b.apply(t)
}

// each calls fn for every book in first-seen order.
func (l *ledger) each(fn func(*book)) {
	for _, ticker := range l.order {
		fn(l.books[ticker])
	}
}
