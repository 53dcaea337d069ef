package tracker

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"portfoliotracker/internal/insight"
)

// Options controls Core initialization.
type Options struct {
	DBPath             string
	Logger             *slog.Logger
	Location           *time.Location
	QuoteCacheTTL      time.Duration
	QuoteFailThreshold int
	QuoteFailWindow    time.Duration
	QuoteCooldown      time.Duration
	HTTPTimeout        time.Duration
	// HTTPClient overrides the client used for quote requests.
	HTTPClient HTTPDoer
	// CryptoIDs maps tickers to CoinGecko coin ids. Falls back to
	// DefaultCryptoIDs for tickers it does not list.
	CryptoIDs map[string]string
	// EquityURL and CryptoURL override the quote endpoints.
	EquityURL string
	CryptoURL string
	// NewProvider builds the LLM client for AnalyzePortfolio.
	NewProvider func(insight.Config) (insight.Provider, error)
	// Now is used for default dates and the timeline "Now" point.
	Now func() time.Time
}

// Core provides access to portfolio business logic and storage.
type Core struct {
	db          *sql.DB
	logger      *slog.Logger
	quotes      *quoteFetcher
	positions   *positionsCache
	location    *time.Location
	now         func() time.Time
	newProvider func(insight.Config) (insight.Provider, error)
	dbPath      string
}

// Open initializes a Core using the provided database path.
func Open(dbPath string) (*Core, error) {
	return OpenWithOptions(Options{DBPath: dbPath})
}

// OpenWithOptions initializes a Core using the provided options.
func OpenWithOptions(opts Options) (*Core, error) {
	if opts.DBPath == "" {
		return nil, errors.New("db path is required")
	}
	cleanPath := filepath.Clean(opts.DBPath)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite performs best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Warn("pragma busy_timeout failed", "err", err)
	}

	if err := initDatabase(db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}

	location := opts.Location
	if location == nil {
		location = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newProvider := opts.NewProvider
	if newProvider == nil {
		newProvider = insight.NewProvider
	}

	var client HTTPDoer = &http.Client{Timeout: defaultDuration(opts.HTTPTimeout, 10*time.Second)}
	if opts.HTTPClient != nil {
		client = opts.HTTPClient
	}
	qf := newQuoteFetcher(quoteFetcherOptions{
		Logger:        logger,
		CacheTTL:      defaultDuration(opts.QuoteCacheTTL, 30*time.Second),
		FailThreshold: defaultInt(opts.QuoteFailThreshold, 3),
		FailWindow:    defaultDuration(opts.QuoteFailWindow, 60*time.Second),
		Cooldown:      defaultDuration(opts.QuoteCooldown, 120*time.Second),
		HTTPClient:    client,
		CryptoIDs:     opts.CryptoIDs,
		EquityURL:     opts.EquityURL,
		CryptoURL:     opts.CryptoURL,
	})

	return &Core{
		db:          db,
		logger:      logger,
		quotes:      qf,
		positions:   newPositionsCache(),
		location:    location,
		now:         now,
		newProvider: newProvider,
		dbPath:      cleanPath,
	}, nil
}

// Close releases database resources.
func (c *Core) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DBPath returns the underlying database path.
func (c *Core) DBPath() string {
	return c.dbPath
}

// Logger returns the logger the core was opened with.
func (c *Core) Logger() *slog.Logger {
	return c.logger
}

func defaultDuration(v time.Duration, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}

func defaultInt(v int, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
