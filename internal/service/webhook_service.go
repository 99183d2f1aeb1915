package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/buzzware/cash/internal/notify"
	"github.com/buzzware/cash/internal/storage"
)

// Event is an asynchronous outcome notification from the settlement
// rail, keyed by the rail-side handle of the affected entity. KYC and
// transaction events share the outcome vocabulary at the protocol
// boundary; handlers dispatch on membership rather than parsing a strict
// enum.
type Event struct {
	Entity          string `json:"entity"`
	Outcome         string `json:"outcome"`
	Transaction     string `json:"transaction,omitempty"`
	TransactionType string `json:"transaction_type,omitempty"`
}

// allowedOutcomes is the shared outcome vocabulary: passed/failed apply
// to KYC reviews, success and others apply to transactions.
var allowedOutcomes = map[string]bool{
	"passed":  true,
	"failed":  true,
	"success": true,
}

var kycNotes = map[string]notify.Note{
	"passed": {
		Title: "Identity verified",
		Body:  "Your account has passed verification. You can now send and receive money.",
	},
	"failed": {
		Title: "Identity verification failed",
		Body:  "Your account did not pass verification. Please review your details and try again.",
	},
}

var transactionNotes = map[string]notify.Note{
	"success": {
		Title: "Transaction complete",
		Body:  "Your transaction has settled.",
	},
	"failed": {
		Title: "Transaction failed",
		Body:  "Your transaction could not be completed.",
	},
}

// WebhookService reconciles asynchronous rail outcomes with local state.
// It is independent of the synchronous request path: events arrive on
// the rail's own schedule, possibly redelivered, and a failure for one
// matched user never blocks the others.
type WebhookService struct {
	store       storage.Store
	notifier    notify.Notifier
	houseHandle string
}

// NewWebhookService creates a webhook reconciler.
func NewWebhookService(store storage.Store, notifier notify.Notifier, houseHandle string) *WebhookService {
	return &WebhookService{
		store:       store,
		notifier:    notifier,
		houseHandle: houseHandle,
	}
}

// HandleKYCOutcome applies a KYC review outcome to every local user
// whose rail handle matches the event entity. The match is defensively
// plural: handle uniqueness is not guaranteed by this service.
func (s *WebhookService) HandleKYCOutcome(ctx context.Context, event Event) error {
	users, err := s.store.GetUsersByHandle(ctx, event.Entity)
	if err != nil {
		return fmt.Errorf("failed to look up users for KYC event: %w", err)
	}
	if len(users) == 0 {
		slog.Error("No user found with this handle", "entity", event.Entity)
		return nil
	}
	if !allowedOutcomes[event.Outcome] {
		slog.Warn("Ignoring unknown KYC outcome", "outcome", event.Outcome, "entity", event.Entity)
		return nil
	}

	verified := event.Outcome == "passed"
	for _, user := range users {
		if err := s.store.SetUserVerified(ctx, user.ID, verified); err != nil {
			// Isolate the failure: keep reconciling other matches.
			slog.Error("Failed to update verification flag",
				"user_id", user.ID,
				"verified", verified,
				"error", err,
			)
			continue
		}

		if note, ok := kycNotes[event.Outcome]; ok {
			notify.BestEffort(ctx, s.notifier, notify.Message{
				Token: user.Token,
				Note:  note,
				Data: map[string]string{
					"user_id": user.ID,
				},
			})
		}
	}

	return nil
}

// HandleTransactionOutcome notifies every matched user about a settled
// or failed rail transaction. Events for the operator's own house handle
// are internal commission settlements and are skipped entirely.
func (s *WebhookService) HandleTransactionOutcome(ctx context.Context, event Event) error {
	if event.Entity == s.houseHandle {
		slog.Debug("Skipping house settlement event", "transaction", event.Transaction)
		return nil
	}

	users, err := s.store.GetUsersByHandle(ctx, event.Entity)
	if err != nil {
		return fmt.Errorf("failed to look up users for transaction event: %w", err)
	}
	if len(users) == 0 {
		slog.Error("No user found with this handle", "entity", event.Entity)
		return nil
	}
	if !allowedOutcomes[event.Outcome] {
		slog.Warn("Ignoring unknown transaction outcome", "outcome", event.Outcome, "entity", event.Entity)
		return nil
	}

	note, ok := transactionNotes[event.Outcome]
	if !ok {
		note = notify.Note{
			Title: "Transaction update",
			Body:  "One of your transactions has a new status.",
		}
	}

	for _, user := range users {
		// Only rail-public fields go into the payload; credentials and
		// wallet internals stay out.
		data := map[string]string{
			"user_id":             user.ID,
			"transaction_id":      event.Transaction,
			"transaction_outcome": event.Outcome,
		}
		if event.TransactionType != "" {
			data["transaction_type"] = event.TransactionType
		}

		notify.BestEffort(ctx, s.notifier, notify.Message{
			Token: user.Token,
			Note:  note,
			Data:  data,
		})
	}

	return nil
}
