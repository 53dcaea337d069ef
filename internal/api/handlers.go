package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"portfoliotracker/internal/report"
	"portfoliotracker/pkg/portfolio"
	"portfoliotracker/pkg/tracker"
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) getTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, offset := normalizeLimitOffset(
		parseIntDefault(query.Get("limit"), 100),
		parseIntDefault(query.Get("offset"), 0),
	)
	filter := tracker.TransactionFilter{
		Ticker:          query.Get("ticker"),
		AssetType:       query.Get("asset_type"),
		TransactionType: query.Get("transaction_type"),
		StartDate:       query.Get("start_date"),
		EndDate:         query.Get("end_date"),
		Limit:           limit,
		Offset:          offset,
	}
	result, err := h.core.GetTransactions(filter)
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	if query.Get("paged") != "1" {
		writeJSON(w, http.StatusOK, result)
		return
	}
	total, err := h.core.GetTransactionCount(filter)
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionsResponse{
		Items:  result,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.core.GetTransaction(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	if tx == nil {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *handler) addTransaction(w http.ResponseWriter, r *http.Request) {
	var payload tracker.TransactionInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.core.AddTransaction(payload)
	if err != nil {
		writeErrorResponse(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *handler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload tracker.TransactionInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.core.UpdateTransaction(chi.URLParam(r, "id"), payload); err != nil {
		writeErrorResponse(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	deleted, err := h.core.DeleteTransaction(id)
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *handler) getPrices(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.GetAllLatestPrices()
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	var payload pricePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(payload.Ticker) == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	result, err := h.core.UpdatePrice(r.Context(), payload.Ticker, portfolio.NormalizeAssetType(payload.AssetType))
	if err != nil {
		writeErrorResponse(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) manualUpdatePrice(w http.ResponseWriter, r *http.Request) {
	var payload manualPricePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(payload.Ticker) == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	if err := h.core.ManualUpdatePrice(payload.Ticker, payload.Price); err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *handler) refreshPrices(w http.ResponseWriter, r *http.Request) {
	updated, errs, err := h.core.RefreshPrices(r.Context())
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	if errs == nil {
		errs = []string{}
	}
	writeJSON(w, http.StatusOK, tracker.RefreshResult{Updated: updated, Errors: errs})
}

func (h *handler) getPositions(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.GetPositions()
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.GetSummary()
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getTimeline(w http.ResponseWriter, r *http.Request) {
	window, err := portfolio.ParseTimeWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.GetTimeline(window)
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	format := strings.ToLower(strings.TrimSpace(query.Get("format")))
	if format == "" {
		format = "md"
	}
	if format != "md" && format != "html" {
		writeError(w, http.StatusBadRequest, "format must be md or html")
		return
	}
	window, err := portfolio.ParseTimeWindow(query.Get("window"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := report.Build(h.core, query.Get("currency"), window)
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	body := report.Markdown(data)
	contentType := "text/markdown; charset=utf-8"
	if format == "html" {
		if body, err = report.HTML(body); err != nil {
			writeErrorResponse(w, r, http.StatusInternalServerError, err)
			return
		}
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (h *handler) analyzePortfolio(w http.ResponseWriter, r *http.Request) {
	var payload tracker.InsightRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.AnalyzePortfolio(r.Context(), payload)
	if err != nil {
		h.logger.Error("portfolio insight failed",
			"provider", payload.Provider,
			"model", payload.Model,
			"base_url", payload.BaseURL,
			"err", err,
		)
		writeErrorResponse(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func normalizeLimitOffset(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
