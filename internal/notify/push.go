package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PushClient sends notifications through an HTTP push gateway.
type PushClient struct {
	url        string
	serverKey  string
	httpClient *http.Client
}

var _ Notifier = (*PushClient)(nil)

// NewPushClient creates a push gateway client.
func NewPushClient(url, serverKey string) *PushClient {
	return &PushClient{
		url:       url,
		serverKey: serverKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Send posts the message to the gateway.
func (c *PushClient) Send(ctx context.Context, msg Message) error {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}
	return nil
}
