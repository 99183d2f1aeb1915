package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/buzzware/cash/internal/ledger"
	"github.com/buzzware/cash/internal/models"
	"github.com/buzzware/cash/internal/notify"
	"github.com/buzzware/cash/internal/storage"
)

// RequestService manages the money-request lifecycle: creation,
// approval, decline and withdrawal. Approval is the only transition that
// moves funds; it delegates to the transfer orchestrator and advances
// the request state only on a fully successful orchestration.
type RequestService struct {
	store     storage.Store
	ledger    ledger.Client
	transfers *TransferService
	notifier  notify.Notifier
}

// NewRequestService creates a request lifecycle manager.
func NewRequestService(store storage.Store, ledgerClient ledger.Client, transfers *TransferService, notifier notify.Notifier) *RequestService {
	return &RequestService{
		store:     store,
		ledger:    ledgerClient,
		transfers: transfers,
		notifier:  notifier,
	}
}

// List returns the requests a user has sent and the requests they have
// received, as two disjoint sequences in insertion order.
func (s *RequestService) List(ctx context.Context, userID string) (sent, received []models.Request, err error) {
	sent, err = s.store.RequestsByRequester(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sent requests: %w", err)
	}
	received, err = s.store.RequestsByRequestee(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list received requests: %w", err)
	}
	return sent, received, nil
}

// Create validates the destination handle against the rail and the user
// store, persists a pending request, and notifies the requestee
// best-effort. The requester and requestee must be distinct users.
func (s *RequestService) Create(ctx context.Context, actor *models.User, destinationHandle string, amount float64) (*models.Request, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	registered, err := s.ledger.CheckHandle(ctx, destinationHandle)
	if err != nil {
		return nil, fmt.Errorf("check handle call failed: %w", err)
	}
	if !registered.OK {
		return nil, ErrInvalidTarget
	}

	requestees, err := s.store.GetUsersByHandle(ctx, destinationHandle)
	if err != nil {
		return nil, fmt.Errorf("failed to look up destination user: %w", err)
	}
	if len(requestees) == 0 {
		return nil, fmt.Errorf("%w: no user with this handle", ErrInvalidTarget)
	}
	requestee := requestees[0]
	if requestee.ID == actor.ID {
		return nil, fmt.Errorf("%w: you cannot request money from yourself", ErrInvalidTarget)
	}

	request := &models.Request{
		RequesterID: actor.ID,
		RequesteeID: requestee.ID,
		Amount:      amount,
		Status:      models.StatusPending,
	}
	if err := s.store.CreateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	notify.BestEffort(ctx, s.notifier, notify.Message{
		Token: requestee.Token,
		Note: notify.Note{
			Title: "Money request received",
			Body:  fmt.Sprintf("%s has requested money from you.", actor.DisplayName),
		},
		Data: map[string]string{
			"amount":             strconv.FormatFloat(amount, 'f', -1, 64),
			"destination_wallet": actor.WalletAddress,
			"requested_by":       actor.DisplayName,
			"requester_id":       actor.ID,
			"request_id":         request.ID,
		},
	})

	return request, nil
}

// Approve funds a pending request: the actor pays the requester the
// requested amount. The terminal status is written only after a fully
// successful orchestration; on any failure the request stays pending and
// the orchestrator's error is returned verbatim, leaving the retry
// decision to the client.
func (s *RequestService) Approve(ctx context.Context, actor *models.User, requestID string) (json.RawMessage, error) {
	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if request == nil {
		return nil, ErrNotFound
	}
	if request.Status.Terminal() {
		return nil, ErrAlreadyFinalized
	}
	if request.RequesterID == actor.ID {
		return nil, ErrForbidden
	}

	requester, err := s.store.GetUserByID(ctx, request.RequesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requester: %w", err)
	}
	if requester == nil {
		return nil, ErrInvalidRequester
	}

	outcome, err := s.transfers.Execute(ctx, request.Amount, actor, requester.Handle, nil)
	if err != nil {
		// Request stays pending; approval is not retried here.
		return nil, err
	}

	transitioned, err := s.store.UpdateRequestStatus(ctx, requestID, models.StatusPending, models.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize request: %w", err)
	}
	if !transitioned {
		// A concurrent caller finalized the request between our read
		// and this write. Funds have moved for this invocation too, so
		// make the lost race loud.
		slog.Error("Approval raced with a concurrent finalization after funds moved",
			"request_id", requestID,
			"payer_id", actor.ID,
		)
		return nil, ErrAlreadyFinalized
	}

	notify.BestEffort(ctx, s.notifier, notify.Message{
		Token: requester.Token,
		Note: notify.Note{
			Title: "Your money request has been approved",
			Body:  fmt.Sprintf("%s has approved your money request.", actor.DisplayName),
		},
		Data: map[string]string{
			"request_id": requestID,
		},
	})

	return outcome.Primary.Payload, nil
}

// Decline finalizes a pending request without moving funds. The terminal
// status depends on the actor's role: the requester withdrawing their
// own request yields cancelled, anyone else declining yields declined.
// Only a genuine decline notifies the requester.
func (s *RequestService) Decline(ctx context.Context, actor *models.User, requestID string) (models.RequestStatus, error) {
	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return "", fmt.Errorf("failed to load request: %w", err)
	}
	if request == nil {
		return "", ErrNotFound
	}
	if request.Status.Terminal() {
		return "", ErrAlreadyFinalized
	}

	requester, err := s.store.GetUserByID(ctx, request.RequesterID)
	if err != nil {
		return "", fmt.Errorf("failed to load requester: %w", err)
	}
	if requester == nil {
		return "", ErrInvalidRequester
	}

	target := models.StatusDeclined
	if request.RequesterID == actor.ID {
		target = models.StatusCancelled
	}

	transitioned, err := s.store.UpdateRequestStatus(ctx, requestID, models.StatusPending, target)
	if err != nil {
		return "", fmt.Errorf("failed to finalize request: %w", err)
	}
	if !transitioned {
		return "", ErrAlreadyFinalized
	}

	if target == models.StatusDeclined {
		notify.BestEffort(ctx, s.notifier, notify.Message{
			Token: requester.Token,
			Note: notify.Note{
				Title: "Your money request has been declined",
				Body:  fmt.Sprintf("%s has declined your money request.", actor.DisplayName),
			},
			Data: map[string]string{
				"request_id": requestID,
			},
		})
	}

	return target, nil
}
