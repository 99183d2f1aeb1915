package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/buzzware/cash/internal/ledger"
	"github.com/buzzware/cash/internal/models"
	"github.com/buzzware/cash/internal/storage"
)

// UserService covers the rail-facing user operations: handle lookups and
// KYC checks. User provisioning happens upstream and is not part of this
// service.
type UserService struct {
	store  storage.Store
	ledger ledger.Client
}

// NewUserService creates a user service.
func NewUserService(store storage.Store, ledgerClient ledger.Client) *UserService {
	return &UserService{store: store, ledger: ledgerClient}
}

// CheckHandle returns the rail's availability payload for a handle.
func (s *UserService) CheckHandle(ctx context.Context, handle string) (json.RawMessage, error) {
	res, err := s.ledger.CheckHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("check handle call failed: %w", err)
	}
	// Both outcomes are meaningful to the caller: the payload says
	// whether the handle is taken or free.
	return res.Payload, nil
}

// CheckKYC returns the rail's current KYC status for the user.
func (s *UserService) CheckKYC(ctx context.Context, user *models.User) (json.RawMessage, error) {
	res, err := s.ledger.CheckKYC(ctx, user.Handle, user.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("check KYC call failed: %w", err)
	}
	if !res.OK {
		return nil, newLedgerError(StagePrimary, res.Payload)
	}
	return res.Payload, nil
}

// RequestKYC asks the rail to start a KYC review for an unverified user.
// When the rail reports an immediate pass, the local verification flag
// is set right away instead of waiting for the webhook.
func (s *UserService) RequestKYC(ctx context.Context, user *models.User) (json.RawMessage, error) {
	if user.Verified {
		return nil, ErrAlreadyVerified
	}

	res, err := s.ledger.RequestKYC(ctx, user.Handle, user.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("request KYC call failed: %w", err)
	}
	if !res.OK {
		return nil, newLedgerError(StagePrimary, res.Payload)
	}

	if gjson.GetBytes(res.Payload, "verification_status").String() == "passed" {
		if err := s.store.SetUserVerified(ctx, user.ID, true); err != nil {
			return nil, fmt.Errorf("failed to update verification flag: %w", err)
		}
	}

	return res.Payload, nil
}
