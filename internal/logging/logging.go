package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultPrefix    = "portfolio"
	defaultRetention = 7
	fileDateLayout   = "20060102"
)

const (
	envLogLevel  = "PORTFOLIO_LOG_LEVEL"
	envLogFormat = "PORTFOLIO_LOG_FORMAT"
)

// DailyWriter appends to one file per calendar day and prunes files older
// than the retention period.
type DailyWriter struct {
	dir           string
	prefix        string
	retentionDays int
	now           func() time.Time

	mu          sync.Mutex
	currentDate string
	file        *os.File
}

// NewDailyWriter creates a daily rotating writer in dir.
func NewDailyWriter(dir string, retentionDays int) (*DailyWriter, error) {
	return NewDailyWriterWithPrefix(dir, defaultPrefix, retentionDays)
}

// NewDailyWriterWithPrefix creates a daily rotating writer whose files are
// named <prefix>-YYYYMMDD.log.
func NewDailyWriterWithPrefix(dir, prefix string, retentionDays int) (*DailyWriter, error) {
	if retentionDays <= 0 {
		retentionDays = defaultRetention
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	w := &DailyWriter{
		dir:           dir,
		prefix:        prefix,
		retentionDays: retentionDays,
		now:           time.Now,
	}
	if err := w.rotateIfNeeded(w.now()); err != nil {
		return nil, err
	}
	return w, nil
}

// Write implements io.Writer.
func (w *DailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.rotateIfNeeded(w.now()); err != nil {
		return 0, err
	}
	return w.file.Write(p)
}

// Path returns the file currently written to.
func (w *DailyWriter) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return ""
	}
	return w.file.Name()
}

// Close closes the underlying file.
func (w *DailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *DailyWriter) rotateIfNeeded(now time.Time) error {
	date := now.Format(fileDateLayout)
	if date == w.currentDate && w.file != nil {
		return nil
	}
	if w.file != nil {
		_ = w.file.Close()
	}
	path := filepath.Join(w.dir, fmt.Sprintf("%s-%s.log", w.prefix, date))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		w.file = nil
		return err
	}
	w.currentDate = date
	w.file = file
	w.cleanup(now)
	return nil
}

func (w *DailyWriter) cleanup(now time.Time) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	cutoff := now.AddDate(0, 0, -w.retentionDays)
	prefix := w.prefix + "-"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		date, err := time.Parse(fileDateLayout, strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".log"))
		if err != nil {
			continue
		}
		if date.Before(cutoff) {
			_ = os.Remove(filepath.Join(w.dir, name))
		}
	}
}

// NewLogger creates a slog.Logger writing to stdout and a daily file in
// logDir, and installs it as the default logger. PORTFOLIO_LOG_LEVEL
// overrides level.
func NewLogger(logDir string, level slog.Level) (*slog.Logger, *DailyWriter, error) {
	writer, err := NewDailyWriter(logDir, defaultRetention)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(io.MultiWriter(os.Stdout, writer), resolveLevel(level))
	slog.SetDefault(logger)
	return logger, writer, nil
}

// NewConsoleLogger logs to w only. Used by the CLI, which keeps stdout for
// its own output.
func NewConsoleLogger(w io.Writer, level slog.Level) *slog.Logger {
	return newLogger(w, resolveLevel(level))
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(newHandler(w, level)).With("service", defaultPrefix)
}

// ParseLevel maps a level name or number to a slog.Level.
func ParseLevel(value string) (slog.Level, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	if i, err := strconv.Atoi(value); err == nil {
		return slog.Level(i), true
	}
	return 0, false
}

func resolveLevel(fallback slog.Level) slog.Level {
	if level, ok := ParseLevel(os.Getenv(envLogLevel)); ok {
		return level
	}
	return fallback
}

func newHandler(w io.Writer, level slog.Level) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(envLogFormat)), "json") {
		return slog.NewJSONHandler(w, options)
	}
	return slog.NewTextHandler(w, options)
}
