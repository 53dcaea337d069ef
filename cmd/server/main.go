package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"portfoliotracker/internal/api"
	"portfoliotracker/internal/config"
	"portfoliotracker/internal/logging"
	"portfoliotracker/pkg/tracker"
)

type serverFlags struct {
	dataDir  string
	port     int
	host     string
	webDir   string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, os.Args[1:], nil); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (serverFlags, error) {
	var f serverFlags
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.dataDir, "data-dir", "", "Directory for storing database and application data")
	fs.IntVar(&f.port, "port", 8000, "Port to run the server on")
	fs.StringVar(&f.host, "host", "127.0.0.1", "Host to bind the server to")
	fs.StringVar(&f.webDir, "web-dir", "", "Directory for SPA static files (optional)")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

// run serves until ctx is done. ready, when non-nil, receives the bound
// address once the listener is open.
func run(ctx context.Context, args []string, ready chan<- string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if f.dataDir != "" {
		config.SetRuntimeDataDir(f.dataDir)
	}
	config.SetRuntimePort(f.port)

	logDir, err := config.LogDir()
	if err != nil {
		return fmt.Errorf("resolve data directory: %w", err)
	}
	level, ok := logging.ParseLevel(f.logLevel)
	if !ok {
		level = slog.LevelInfo
	}
	logger, writer, err := logging.NewLogger(logDir, level)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("failed to close log writer", "err", err)
		}
	}()

	dbPath, err := config.GetDBPath()
	if err != nil {
		return fmt.Errorf("resolve db path: %w", err)
	}
	userCfg := config.LoadUserConfig()
	core, err := tracker.OpenWithOptions(tracker.Options{
		DBPath:        dbPath,
		Logger:        logger,
		QuoteCacheTTL: userCfg.QuoteCacheTTL(),
		CryptoIDs:     userCfg.CryptoIDs,
	})
	if err != nil {
		return fmt.Errorf("initialize core: %w", err)
	}
	defer func() {
		if err := core.Close(); err != nil {
			logger.Error("failed to close core", "err", err)
		}
	}()

	handler := api.NewRouter(core)
	if resolvedWebDir := resolveWebDir(f.webDir); resolvedWebDir != "" {
		logger.Info("serving SPA", "web_dir", resolvedWebDir)
		handler = api.WithSPA(handler, resolvedWebDir)
	}
	handler = middleware.Compress(5)(handler)

	listener, err := net.Listen("tcp", net.JoinHostPort(f.host, fmt.Sprint(f.port)))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("server starting", "addr", listener.Addr().String(), "db_path", dbPath)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()
	if ready != nil {
		ready <- listener.Addr().String()
	}

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "err", err)
		return err
	}
	return nil
}

func resolveWebDir(input string) string {
	if input != "" {
		if dirExists(input) {
			return input
		}
		return ""
	}

	candidates := []string{"web", "static"}
	for _, candidate := range candidates {
		if dirExists(candidate) {
			return candidate
		}
	}
	if exe, err := os.Executable(); err == nil {
		base := filepath.Dir(exe)
		for _, candidate := range candidates {
			path := filepath.Join(base, candidate)
			if dirExists(path) {
				return path
			}
		}
	}
	return ""
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
