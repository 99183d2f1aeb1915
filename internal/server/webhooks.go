package server

import (
	"net/http"

	"github.com/buzzware/cash/internal/service"
)

// webhookBody is the rail's webhook envelope.
type webhookBody struct {
	EventDetails service.Event `json:"event_details"`
}

// handleKYCWebhook consumes a KYC-outcome event from the rail.
// Per-user reconciliation failures are swallowed inside the service so
// one bad user never blocks the rest; only a failure to read the event
// itself is surfaced.
func (s *Server) handleKYCWebhook(w http.ResponseWriter, r *http.Request) {
	var body webhookBody
	if !decodeBody(w, r, &body) {
		return
	}

	if err := s.webhooks.HandleKYCOutcome(r.Context(), body.EventDetails); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, nil)
}

// handleTransactionWebhook consumes a transaction-outcome event from
// the rail.
func (s *Server) handleTransactionWebhook(w http.ResponseWriter, r *http.Request) {
	var body webhookBody
	if !decodeBody(w, r, &body) {
		return
	}

	if err := s.webhooks.HandleTransactionOutcome(r.Context(), body.EventDetails); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, nil)
}
