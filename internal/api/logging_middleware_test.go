package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"portfoliotracker/pkg/tracker"
)

func setupRouterWithLogger(t *testing.T, logger *slog.Logger) http.Handler {
	t.Helper()
	core, err := tracker.OpenWithOptions(tracker.Options{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("open core: %v", err)
	}
	t.Cleanup(func() { _ = core.Close() })
	return NewRouter(core)
}

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestNewRouterLogsRequestCompleted(t *testing.T) {
	logger, buf := newBufferLogger()
	router := setupRouterWithLogger(t, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("User-Agent", "portfolio-test-agent")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	logs := buf.String()
	for _, want := range []string{
		"http request completed",
		"level=INFO",
		"method=GET",
		"path=/api/health",
		"route=/api/health",
		"status=200",
		"request_id=",
		"duration_ms=",
		"user_agent=portfolio-test-agent",
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("expected %q in logs, got %q", want, logs)
		}
	}
}

func TestNewRouterLogsWarnForBadRequest(t *testing.T) {
	logger, buf := newBufferLogger()
	router := setupRouterWithLogger(t, logger)

	rr := doRequest(router, http.MethodGet, "/api/timeline?window=forever", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, "level=WARN") {
		t.Fatalf("expected warn level log, got %q", logs)
	}
	if !strings.Contains(logs, "status=400") {
		t.Fatalf("expected status=400 in log, got %q", logs)
	}
	if !strings.Contains(logs, `error_message="unknown time window \"forever\""`) {
		t.Fatalf("expected error message in log, got %q", logs)
	}
}

func TestNewRouterRecoversPanicWithStructuredLog(t *testing.T) {
	logger, buf := newBufferLogger()
	oldDefault := slog.Default()
	slog.SetDefault(logger)
	t.Cleanup(func() { slog.SetDefault(oldDefault) })

	router := NewRouter(nil)
	rr := doRequest(router, http.MethodGet, "/api/positions", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, `"message":"internal server error"`) {
		t.Fatalf("expected structured error response, got %q", body)
	}

	logs := buf.String()
	for _, want := range []string{"panic recovered", "request_id=", "level=ERROR", "status=500"} {
		if !strings.Contains(logs, want) {
			t.Errorf("expected %q in logs, got %q", want, logs)
		}
	}
}

func TestNewRouterUsesCoreLoggerForRequestLogs(t *testing.T) {
	logger, buf := newBufferLogger()
	router := setupRouterWithLogger(t, logger)

	defaultLogger, defaultBuf := newBufferLogger()
	oldDefault := slog.Default()
	slog.SetDefault(defaultLogger)
	t.Cleanup(func() { slog.SetDefault(oldDefault) })

	rr := doRequest(router, http.MethodGet, "/api/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(buf.String(), "http request completed") {
		t.Fatalf("expected logs written through core logger, got %q", buf.String())
	}
	if defaultBuf.Len() != 0 {
		t.Fatalf("expected no log written to slog default, got %q", defaultBuf.String())
	}
}
