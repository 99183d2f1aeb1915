package server

import (
	"net/http"

	"github.com/buzzware/cash/internal/middleware"
)

// handleCheckHandle reports whether a rail handle is taken. Public:
// handle selection happens before the user has a token.
func (s *Server) handleCheckHandle(w http.ResponseWriter, r *http.Request) {
	payload, err := s.users.CheckHandle(r.Context(), r.URL.Query().Get("handle"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, payload)
}

// handleGetHandle returns the caller's own rail handle.
func (s *Server) handleGetHandle(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	writeSuccess(w, map[string]string{
		"handle": user.Handle,
	})
}

// handleCheckKYC returns the rail's current KYC status for the caller.
func (s *Server) handleCheckKYC(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	payload, err := s.users.CheckKYC(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, payload)
}

// handleRequestKYC starts a rail KYC review for the caller.
func (s *Server) handleRequestKYC(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	payload, err := s.users.RequestKYC(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, payload)
}
