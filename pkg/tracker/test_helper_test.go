package tracker

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"portfoliotracker/pkg/portfolio"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// setupTestDB opens a Core on a temporary database with a fixed clock.
func setupTestDB(t *testing.T, opts ...func(*Options)) *Core {
	t.Helper()
	o := Options{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Now:    func() time.Time { return fixedNow },
	}
	for _, fn := range opts {
		fn(&o)
	}
	core, err := OpenWithOptions(o)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { core.Close() })
	return core
}

func addTx(t *testing.T, core *Core, ticker, typ, qty, price, date string) string {
	t.Helper()
	id, err := core.AddTransaction(TransactionInput{
		Ticker:   ticker,
		Type:     typ,
		Quantity: portfolio.MustAmount(qty),
		Price:    portfolio.MustAmount(price),
		Date:     date,
	})
	if err != nil {
		t.Fatalf("failed to add %s %s: %v", typ, ticker, err)
	}
	return id
}

func setPrice(t *testing.T, core *Core, ticker, price string) {
	t.Helper()
	if err := core.ManualUpdatePrice(ticker, portfolio.MustAmount(price)); err != nil {
		t.Fatalf("failed to set price for %s: %v", ticker, err)
	}
}

func assertAmount(t *testing.T, got portfolio.Amount, want string, msg string) {
	t.Helper()
	if !got.Equal(portfolio.MustAmount(want)) {
		t.Errorf("%s: got %s, want %s", msg, got, want)
	}
}

func assertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", msg, err)
	}
}

// mockHTTPClient implements HTTPDoer by routing on a URL substring.
type mockHTTPClient struct {
	mu     sync.Mutex
	routes map[string]mockResponse
	calls  []string
}

type mockResponse struct {
	status int
	body   string
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req.URL.String())
	for substr, resp := range m.routes {
		if strings.Contains(req.URL.String(), substr) {
			return &http.Response{
				StatusCode: resp.status,
				Body:       io.NopCloser(strings.NewReader(resp.body)),
				Header:     make(http.Header),
			}, nil
		}
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     make(http.Header),
	}, nil
}

func (m *mockHTTPClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
