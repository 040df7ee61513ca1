package web

// errors.go provides the JSON response helpers shared by all handlers.
// Errors are logged server-side with the request id for correlation
// and returned to clients as a flat {"error": ...} object, the shape
// the original augmentation clients expect.

import (
	"encoding/json"
	"net/http"

	"github.com/langtools/langcodes/internal/logging"
	"github.com/langtools/langcodes/internal/metrics"
)

// writeError logs the error with request context and writes a JSON
// error response.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	metrics.ErrorsLogged.Inc()

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", message,
	)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON encodes v and writes it with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent; nothing to do but log.
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
