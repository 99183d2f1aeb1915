// Package ledger abstracts the external settlement rail.
//
// Every call is a synchronous remote operation that either fails at the
// transport level (returned as a Go error) or completes with a tagged
// Result: OK carries the rail's success payload, not-OK carries the
// rail's own diagnostic payload verbatim so callers can relay it without
// understanding it. Calls are attempted exactly once; the rail is the
// system of record and retries are the caller's decision.
package ledger

import (
	"context"
	"encoding/json"
	"net/url"
)

// Result is the tagged outcome of a rail call.
type Result struct {
	// OK is true when the rail reported success.
	OK bool

	// Payload is the rail's response body, passed through untouched.
	Payload json.RawMessage
}

// Client is the capability surface this service needs from the rail.
// Implementations must not retry; each method issues one remote call.
type Client interface {
	// CheckHandle reports whether a rail handle is registered.
	CheckHandle(ctx context.Context, handle string) (Result, error)

	// Balance returns the balance payload for a wallet address.
	Balance(ctx context.Context, walletAddress string) (Result, error)

	// Transfer moves amount from the payer's wallet to the payee's.
	Transfer(ctx context.Context, amount float64, payerHandle, payerKey, payeeHandle string) (Result, error)

	// Issue funds the user's wallet from their linked bank account.
	Issue(ctx context.Context, amount float64, handle, key, accountName, processingType string) (Result, error)

	// Redeem moves funds from the user's wallet back to their bank.
	Redeem(ctx context.Context, amount float64, handle, key, accountName, processingType string) (Result, error)

	// CancelTransaction cancels an in-flight rail transaction.
	CancelTransaction(ctx context.Context, handle, key, txID string) (Result, error)

	// Transactions lists the user's rail transactions, filtered by the
	// caller-supplied query parameters.
	Transactions(ctx context.Context, handle, key string, filters url.Values) (Result, error)

	// Wallets lists the wallets registered for the user.
	Wallets(ctx context.Context, handle, key string) (Result, error)

	// RequestKYC asks the rail to start a KYC review for the user.
	RequestKYC(ctx context.Context, handle, key string) (Result, error)

	// CheckKYC returns the rail's current KYC status for the user.
	CheckKYC(ctx context.Context, handle, key string) (Result, error)
}
