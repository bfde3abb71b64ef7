// Package httputil writes JSON responses in the storefront backend's dialect:
// plain payloads, "{"error": ...}" and "{"detail": ...}" error bodies,
// per-field message maps, and the paginated list envelope. The in-process API
// fake uses it so test responses stay byte-compatible with the real backend.
package httputil

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an "{"error": message}" body, the backend's shape for
// domain-level failures.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteDetail writes a "{"detail": message}" body, the backend's shape for
// framework-level failures such as auth rejections and missing resources.
func WriteDetail(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, map[string]string{"detail": detail})
}

// WriteFieldErrors writes a field-to-messages map, the backend's shape for
// per-field validation failures.
func WriteFieldErrors(w http.ResponseWriter, status int, fields map[string][]string) {
	WriteJSON(w, status, fields)
}

// WritePage writes results inside the backend's pagination envelope. next and
// prev are full page URLs, or empty for none.
func WritePage(w http.ResponseWriter, results any, count int, next, prev string) {
	body := map[string]any{
		"count":    count,
		"next":     nullable(next),
		"previous": nullable(prev),
		"results":  results,
	}
	WriteJSON(w, http.StatusOK, body)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
