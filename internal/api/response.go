package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"portfoliotracker/pkg/tracker"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeErrorResponse writes err with the HTTP status derived from its
// tracker.ErrorCode. Errors without a code use fallbackStatus.
func writeErrorResponse(w http.ResponseWriter, r *http.Request, fallbackStatus int, err error) {
	response := ErrorResponse{
		Code:    fallbackStatus,
		Message: err.Error(),
	}

	if code := tracker.CodeOf(err); code != "" {
		response.ErrorCode = string(code)
		response.Code = mapErrorCodeToHTTPStatus(code)
	}
	if r != nil {
		response.RequestID = middleware.GetReqID(r.Context())
	}

	if setter, ok := w.(errorMessageSetter); ok {
		setter.SetErrorMessage(err.Error())
	}
	writeJSON(w, response.Code, response)
}

// mapErrorCodeToHTTPStatus maps business error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code tracker.ErrorCode) int {
	switch code {
	case tracker.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case tracker.ErrCodeNotFound:
		return http.StatusNotFound
	case tracker.ErrCodeUpstream:
		return http.StatusBadGateway
	case tracker.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case tracker.ErrCodeDatabase, tracker.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
