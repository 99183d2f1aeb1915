package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buzzware/cash/internal/middleware"
)

// handleTransactions lists the caller's rail transactions, passing the
// query string through as rail filters.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	res, err := s.transfers.Transactions(r.Context(), user, r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, res.Payload)
}

// handleFund moves money from the caller's bank account into their
// wallet.
func (s *Server) handleFund(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var body struct {
		Amount         float64 `json:"amount"`
		ProcessingType string  `json:"processingType"`
		AccountName    string  `json:"accountName"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	outcome, err := s.transfers.Fund(r.Context(), user, body.Amount, body.ProcessingType, body.AccountName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, outcome.Primary.Payload)
}

// handleTransfer sends money from the caller to another handle.
func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var body struct {
		Amount            float64 `json:"amount"`
		DestinationHandle string  `json:"destinationHandle"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	outcome, err := s.transfers.Transfer(r.Context(), user, body.Amount, body.DestinationHandle)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, outcome.Primary.Payload)
}

// handleRedeem moves money from the caller's wallet back to their bank
// account.
func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var body struct {
		Amount         float64 `json:"amount"`
		ProcessingType string  `json:"processingType"`
		AccountName    string  `json:"accountName"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	outcome, err := s.transfers.Redeem(r.Context(), user, body.Amount, body.ProcessingType, body.AccountName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, outcome.Primary.Payload)
}

// handleCancelTransaction cancels an in-flight rail transaction.
func (s *Server) handleCancelTransaction(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	txID := chi.URLParam(r, "id")

	res, err := s.transfers.Cancel(r.Context(), user, txID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, res.Payload)
}
