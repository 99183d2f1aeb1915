package server

import (
	"net/http"

	"github.com/buzzware/cash/internal/middleware"
)

// handleWallets lists the caller's rail wallets.
func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	payload, err := s.wallets.Wallets(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, payload)
}

// handleOwnBalance returns the balance of the caller's own wallet.
func (s *Server) handleOwnBalance(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	payload, err := s.wallets.OwnBalance(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, payload)
}

// handleBalanceOf returns the balance of an arbitrary wallet address,
// used to display the counterparty's wallet before a transfer.
func (s *Server) handleBalanceOf(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Address string `json:"address"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	payload, err := s.wallets.BalanceOf(r.Context(), body.Address)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, payload)
}
