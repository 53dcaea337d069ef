package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"

	"portfoliotracker/internal/config"
	"portfoliotracker/internal/logging"
	"portfoliotracker/pkg/tracker"
)

var (
	dbPath   = flag.String("db", "", "Path to the portfolio database (defaults to the configured data dir)")
	plain    = flag.Bool("plain", false, "Print raw Markdown instead of rendering it for the terminal")
	currency = flag.String("currency", "USD", "Currency used to format amounts")
)

// stdout and stderr are swapped in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// openCore opens the tracker on -db, or on the configured database.
func openCore() (*tracker.Core, error) {
	path := *dbPath
	if path == "" {
		var err error
		if path, err = config.GetDBPath(); err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	cfg := config.LoadUserConfig()
	return tracker.OpenWithOptions(tracker.Options{
		DBPath:        path,
		Logger:        logging.NewConsoleLogger(stderr, slog.LevelWarn),
		QuoteCacheTTL: cfg.QuoteCacheTTL(),
		CryptoIDs:     cfg.CryptoIDs,
	})
}

// printMarkdown writes md to stdout, rendered for the terminal unless -plain.
func printMarkdown(md string) {
	if *plain {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
