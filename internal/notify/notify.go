// Package notify delivers push notifications to user devices.
//
// Delivery is strictly best-effort: failures must never fail the
// surrounding business operation, because by the time a notification is
// attempted funds have already moved or request state has already
// changed. Call sites either use BestEffort, which logs and swallows the
// error, or discard the return themselves.
package notify

import (
	"context"
	"log/slog"
)

// Note is the visible part of a notification.
type Note struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Message is one push notification addressed to a device token.
type Message struct {
	// Token is the recipient's device token.
	Token string `json:"token"`

	// Note is the visible title and body.
	Note Note `json:"notification"`

	// Data is the opaque key-value payload handed to the app.
	Data map[string]string `json:"data,omitempty"`
}

// Notifier sends push notifications. Implementations make no delivery
// guarantee.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// BestEffort sends msg and logs any failure instead of returning it.
// Messages without a token are skipped silently; users who are not
// logged in have no device to reach.
func BestEffort(ctx context.Context, n Notifier, msg Message) {
	if msg.Token == "" {
		return
	}
	if err := n.Send(ctx, msg); err != nil {
		slog.Warn("Notification delivery failed",
			"title", msg.Note.Title,
			"error", err,
		)
	}
}
