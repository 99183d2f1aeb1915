// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/buzzware/cash/internal/models"
)

// Store defines the interface for wallet-backend persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// CreateRequest persists a new money request and returns the
	// assigned ID via request.ID. The store also sets CreatedAt.
	CreateRequest(ctx context.Context, request *models.Request) error

	// GetRequest retrieves a request by ID. Returns (nil, nil) when the
	// request does not exist.
	GetRequest(ctx context.Context, requestID string) (*models.Request, error)

	// UpdateRequestStatus transitions a request from one status to
	// another with a conditional write: the update only applies while
	// the current status still equals from. Returns false when no row
	// transitioned, meaning the request is absent or was already
	// finalized by a concurrent caller.
	UpdateRequestStatus(ctx context.Context, requestID string, from, to models.RequestStatus) (bool, error)

	// RequestsByRequester returns the requests a user has sent, in
	// insertion order.
	RequestsByRequester(ctx context.Context, userID string) ([]models.Request, error)

	// RequestsByRequestee returns the requests a user has received, in
	// insertion order.
	RequestsByRequestee(ctx context.Context, userID string) ([]models.Request, error)

	// CreateUser inserts a user. Production traffic never creates
	// users; this exists for provisioning and tests.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by ID. Returns (nil, nil) when the
	// user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByHandle returns every user whose rail handle matches.
	// Handles are expected to be unique but the store does not enforce
	// it, so callers must handle zero-or-more matches.
	GetUsersByHandle(ctx context.Context, handle string) ([]models.User, error)

	// SetUserVerified updates a user's KYC verification flag.
	SetUserVerified(ctx context.Context, id string, verified bool) error

	// ListCharges returns the commission price table.
	ListCharges(ctx context.Context) ([]models.Charge, error)

	// SetCharge inserts or updates the commission price for one
	// processing type.
	SetCharge(ctx context.Context, charge models.Charge) error

	// Close releases any resources held by the store.
	Close() error
}
