package service

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced request does not exist.
	ErrNotFound = errors.New("invalid request id")

	// ErrForbidden means the actor is not permitted this transition.
	// A requester cannot approve their own request; only the requestee
	// may fund it.
	ErrForbidden = errors.New("you cannot approve your own request")

	// ErrAlreadyFinalized means the request left the pending state
	// before this call could act on it.
	ErrAlreadyFinalized = errors.New("request already finalized")

	// ErrInvalidTarget means the destination handle did not resolve to
	// a real, distinct user.
	ErrInvalidTarget = errors.New("invalid destination handle")

	// ErrInvalidRequester means the request references a user that no
	// longer resolves.
	ErrInvalidRequester = errors.New("invalid requester id")

	// ErrInsufficientBalance means a balance or minimum-amount
	// precondition failed before any funds-moving ledger call.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount means the amount is not a positive value.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrAlreadyVerified means a KYC review was requested for a user
	// who already passed one.
	ErrAlreadyVerified = errors.New("user already KYC verified")
)

// Stage identifies which step of an orchestration failed.
type Stage string

const (
	// StageNone means every step succeeded.
	StageNone Stage = "none"

	// StagePrimary means the user-facing operation failed.
	StagePrimary Stage = "primary"

	// StageCommission means the operator's commission capture failed.
	StageCommission Stage = "commission"
)

// LedgerError is a non-success outcome reported by the settlement rail.
// Payload carries the rail's own diagnostic body verbatim so callers can
// relay rail-specific diagnostics without interpreting them.
type LedgerError struct {
	Stage   Stage
	Payload json.RawMessage
}

func (e *LedgerError) Error() string {
	if e.Stage == StageCommission {
		return "couldn't transact commission"
	}
	return fmt.Sprintf("ledger rejected %s operation", e.Stage)
}

// newLedgerError wraps a rejected rail payload for the given stage.
func newLedgerError(stage Stage, payload json.RawMessage) *LedgerError {
	return &LedgerError{Stage: stage, Payload: payload}
}
