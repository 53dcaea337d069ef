package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"portfoliotracker/pkg/tracker"
)

// NewRouter builds the HTTP API router.
func NewRouter(core *tracker.Core) http.Handler {
	logger := slog.Default()
	if core != nil && core.Logger() != nil {
		logger = core.Logger()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLoggingMiddleware(logger))
	r.Use(recoveryLoggingMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	h := &handler{core: core, logger: logger}

	r.Get("/api/health", h.health)

	// Transactions
	r.Get("/api/transactions", h.getTransactions)
	r.Post("/api/transactions", h.addTransaction)
	r.Get("/api/transactions/{id}", h.getTransaction)
	r.Put("/api/transactions/{id}", h.updateTransaction)
	r.Delete("/api/transactions/{id}", h.deleteTransaction)

	// Prices
	r.Get("/api/prices", h.getPrices)
	r.Post("/api/prices/update", h.updatePrice)
	r.Post("/api/prices/manual", h.manualUpdatePrice)
	r.Post("/api/prices/refresh", h.refreshPrices)

	// Portfolio views
	r.Get("/api/positions", h.getPositions)
	r.Get("/api/summary", h.getSummary)
	r.Get("/api/timeline", h.getTimeline)
	r.Get("/api/report", h.getReport)
	r.Post("/api/insights", h.analyzePortfolio)

	return r
}

type handler struct {
	core   *tracker.Core
	logger *slog.Logger
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorMessageSetter is implemented by the request logging writer.
type errorMessageSetter interface {
	SetErrorMessage(string)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if setter, ok := w.(errorMessageSetter); ok {
		setter.SetErrorMessage(message)
	}
	writeJSON(w, status, ErrorResponse{Code: status, Message: message})
}
