// Package server wires the HTTP surface: routing, auth, idempotency and
// the uniform response envelope over the service layer.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/buzzware/cash/internal/auth"
	"github.com/buzzware/cash/internal/middleware"
	"github.com/buzzware/cash/internal/service"
	"github.com/buzzware/cash/internal/storage"
)

// Server holds the handler dependencies.
type Server struct {
	store     storage.Store
	jwt       *auth.JWTManager
	requests  *service.RequestService
	transfers *service.TransferService
	wallets   *service.WalletService
	users     *service.UserService
	webhooks  *service.WebhookService

	// idempotency is nil when no cache is configured; the money-moving
	// POSTs then run without replay protection.
	idempotency func(http.Handler) http.Handler
}

// Config collects the server dependencies.
type Config struct {
	Store       storage.Store
	JWT         *auth.JWTManager
	Requests    *service.RequestService
	Transfers   *service.TransferService
	Wallets     *service.WalletService
	Users       *service.UserService
	Webhooks    *service.WebhookService
	Idempotency middleware.IdempotencyCache
}

// New creates a Server.
func New(cfg Config) *Server {
	s := &Server{
		store:     cfg.Store,
		jwt:       cfg.JWT,
		requests:  cfg.Requests,
		transfers: cfg.Transfers,
		wallets:   cfg.Wallets,
		users:     cfg.Users,
		webhooks:  cfg.Webhooks,
	}
	if cfg.Idempotency != nil {
		s.idempotency = middleware.Idempotency(cfg.Idempotency)
	}
	return s
}

// Router assembles the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, "Buzzware Cash API")
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Get("/checkHandle", s.handleCheckHandle)

			// KYC endpoints must be reachable before verification.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(s.jwt, s.store, false))
				r.Get("/handle", s.handleGetHandle)
				r.Get("/checkKYC", s.handleCheckKYC)
				r.Get("/requestKYC", s.handleRequestKYC)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwt, s.store, true))

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", s.handleWallets)
				r.Get("/balance", s.handleOwnBalance)
				r.Post("/balance", s.handleBalanceOf)
			})

			r.Route("/request", func(r chi.Router) {
				r.Get("/", s.handleListRequests)
				r.Post("/", s.handleCreateRequest)
				r.Get("/approve/{request_id}", s.handleApproveRequest)
				r.Get("/decline/{request_id}", s.handleDeclineRequest)
			})

			r.Route("/transaction", func(r chi.Router) {
				r.Get("/", s.handleTransactions)
				r.Delete("/cancel/{id}", s.handleCancelTransaction)

				r.Group(func(r chi.Router) {
					if s.idempotency != nil {
						r.Use(s.idempotency)
					}
					r.Post("/fund", s.handleFund)
					r.Post("/transfer", s.handleTransfer)
					r.Post("/redeem", s.handleRedeem)
				})
			})
		})

		r.Route("/webhook", func(r chi.Router) {
			r.Post("/kyc", s.handleKYCWebhook)
			r.Post("/transaction", s.handleTransactionWebhook)
		})
	})

	return r
}
