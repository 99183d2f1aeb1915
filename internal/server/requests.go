package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buzzware/cash/internal/middleware"
	"github.com/buzzware/cash/internal/models"
)

// requestJSON is the wire representation of a money request.
type requestJSON struct {
	ID          string  `json:"id"`
	RequesterID string  `json:"requester_id"`
	RequesteeID string  `json:"requestee_id"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	CreatedAt   int64   `json:"created_at"`
}

func toRequestJSON(requests []models.Request) []requestJSON {
	out := make([]requestJSON, len(requests))
	for i, r := range requests {
		out[i] = requestJSON{
			ID:          r.ID,
			RequesterID: r.RequesterID,
			RequesteeID: r.RequesteeID,
			Amount:      r.Amount,
			Status:      string(r.Status),
			CreatedAt:   r.CreatedAt,
		}
	}
	return out
}

// handleListRequests returns the caller's sent and received requests.
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	sent, received, err := s.requests.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, map[string]any{
		"sent":     toRequestJSON(sent),
		"received": toRequestJSON(received),
	})
}

// handleCreateRequest creates a pending money request addressed to the
// owner of the destination handle.
func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var body struct {
		DestinationHandle string  `json:"destinationHandle"`
		Amount            float64 `json:"amount"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	request, err := s.requests.Create(r.Context(), user, body.DestinationHandle, body.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, map[string]string{
		"request_id": request.ID,
	})
}

// handleApproveRequest funds a pending request; the caller pays. On
// success the response data is the rail's transfer payload.
func (s *Server) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "request_id")

	payload, err := s.requests.Approve(r.Context(), user, requestID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, payload)
}

// handleDeclineRequest finalizes a pending request without moving
// funds: declined by the requestee, cancelled by the requester.
func (s *Server) handleDeclineRequest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "request_id")

	status, err := s.requests.Decline(r.Context(), user, requestID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, map[string]string{
		"message": fmt.Sprintf("Request successfully %s!", status),
	})
}
