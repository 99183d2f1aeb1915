package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/buzzware/cash/internal/service"
)

// envelope is the uniform response shape: message is "success" or
// "failed", data carries the payload or the failure reason.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Message: "success", Data: data})
}

// writeError maps the service error taxonomy onto HTTP statuses. When
// the failure came from the settlement rail, data carries the rail's own
// diagnostic payload verbatim; otherwise a short human-readable reason.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrAlreadyFinalized):
		status = http.StatusConflict
	}

	var data any = err.Error()
	var ledgerErr *service.LedgerError
	if errors.As(err, &ledgerErr) && len(ledgerErr.Payload) > 0 && json.Valid(ledgerErr.Payload) {
		data = json.RawMessage(ledgerErr.Payload)
	}

	writeJSON(w, status, envelope{Message: "failed", Data: data})
}

// decodeBody parses a JSON request body into dst, rejecting garbage
// early with a uniform failure envelope.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "failed", Data: "invalid request body"})
		return false
	}
	return true
}
