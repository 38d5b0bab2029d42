package httpapi

import (
	"encoding/json"
	"net/http"

	"voiced/internal/catalog"
	"voiced/internal/manager"
	"voiced/pkg/types"
)

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// errorStatus maps the manager's error taxonomy (plus catalog lookups) onto
// HTTP status codes. Transient conditions get retryable codes so callers can
// tell "retry shortly" from "fix the request".
func errorStatus(err error) int {
	switch {
	case manager.IsModelNotLoaded(err), catalog.IsNotFound(err):
		return http.StatusNotFound
	case manager.IsSaturated(err):
		return http.StatusTooManyRequests
	case manager.IsTimeout(err):
		return http.StatusGatewayTimeout
	case manager.IsWorkerUnavailable(err):
		return http.StatusServiceUnavailable
	case manager.IsUnsupportedEngine(err), manager.IsInvalidRequest(err):
		return http.StatusBadRequest
	case manager.IsAlreadyLoaded(err):
		return http.StatusConflict
	case manager.IsBackendError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err and writes the JSON payload, counting backpressure.
func writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusTooManyRequests {
		IncrementBackpressure("saturated")
	}
	writeJSONError(w, status, err.Error())
}
