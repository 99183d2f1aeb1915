package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient talks to the rail's JSON API. The app handle and key
// authenticate this service; per-user credentials travel in the request
// body as the rail requires.
type HTTPClient struct {
	baseURL    string
	appHandle  string
	appKey     string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// HTTPClientConfig configures the rail client.
type HTTPClientConfig struct {
	BaseURL   string
	AppHandle string
	AppKey    string
	Timeout   time.Duration
}

// NewHTTPClient creates a rail client with the given configuration.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:   cfg.BaseURL,
		appHandle: cfg.AppHandle,
		appKey:    cfg.AppKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// post issues one JSON POST to the rail and folds the response into a
// Result. Any 2xx status is success; everything else carries the rail's
// error payload through untouched.
func (c *HTTPClient) post(ctx context.Context, path string, body map[string]any, query url.Values) (Result, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal rail request: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create rail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-App-Handle", c.appHandle)
	req.Header.Set("X-App-Key", c.appKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("rail request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read rail response: %w", err)
	}

	return Result{
		OK:      resp.StatusCode >= 200 && resp.StatusCode < 300,
		Payload: payload,
	}, nil
}

// CheckHandle reports whether a rail handle is registered.
func (c *HTTPClient) CheckHandle(ctx context.Context, handle string) (Result, error) {
	return c.post(ctx, "/check_handle", map[string]any{"handle": handle}, nil)
}

// Balance returns the balance payload for a wallet address.
func (c *HTTPClient) Balance(ctx context.Context, walletAddress string) (Result, error) {
	return c.post(ctx, "/get_balance", map[string]any{"address": walletAddress}, nil)
}

// Transfer moves amount from the payer's wallet to the payee's.
func (c *HTTPClient) Transfer(ctx context.Context, amount float64, payerHandle, payerKey, payeeHandle string) (Result, error) {
	return c.post(ctx, "/transfer", map[string]any{
		"amount":             amount,
		"handle":             payerHandle,
		"private_key":        payerKey,
		"destination_handle": payeeHandle,
	}, nil)
}

// Issue funds the user's wallet from their linked bank account.
func (c *HTTPClient) Issue(ctx context.Context, amount float64, handle, key, accountName, processingType string) (Result, error) {
	return c.post(ctx, "/issue", map[string]any{
		"amount":          amount,
		"handle":          handle,
		"private_key":     key,
		"account_name":    accountName,
		"processing_type": processingType,
	}, nil)
}

// Redeem moves funds from the user's wallet back to their bank.
func (c *HTTPClient) Redeem(ctx context.Context, amount float64, handle, key, accountName, processingType string) (Result, error) {
	return c.post(ctx, "/redeem", map[string]any{
		"amount":          amount,
		"handle":          handle,
		"private_key":     key,
		"account_name":    accountName,
		"processing_type": processingType,
	}, nil)
}

// CancelTransaction cancels an in-flight rail transaction.
func (c *HTTPClient) CancelTransaction(ctx context.Context, handle, key, txID string) (Result, error) {
	return c.post(ctx, "/cancel_transaction", map[string]any{
		"handle":         handle,
		"private_key":    key,
		"transaction_id": txID,
	}, nil)
}

// Transactions lists the user's rail transactions.
func (c *HTTPClient) Transactions(ctx context.Context, handle, key string, filters url.Values) (Result, error) {
	return c.post(ctx, "/get_transactions", map[string]any{
		"handle":      handle,
		"private_key": key,
	}, filters)
}

// Wallets lists the wallets registered for the user.
func (c *HTTPClient) Wallets(ctx context.Context, handle, key string) (Result, error) {
	return c.post(ctx, "/get_wallets", map[string]any{
		"handle":      handle,
		"private_key": key,
	}, nil)
}

// RequestKYC asks the rail to start a KYC review for the user.
func (c *HTTPClient) RequestKYC(ctx context.Context, handle, key string) (Result, error) {
	return c.post(ctx, "/request_kyc", map[string]any{
		"handle":      handle,
		"private_key": key,
	}, nil)
}

// CheckKYC returns the rail's current KYC status for the user.
func (c *HTTPClient) CheckKYC(ctx context.Context, handle, key string) (Result, error) {
	return c.post(ctx, "/check_kyc", map[string]any{
		"handle":      handle,
		"private_key": key,
	}, nil)
}
