package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/buzzware/cash/internal/ledger"
	"github.com/buzzware/cash/internal/models"
	"github.com/buzzware/cash/internal/rates"
)

// Commission describes an operator fee to capture alongside a primary
// transfer. A nil Commission means no fee is configured for the
// operation.
type Commission struct {
	Amount    float64
	Recipient string
}

// Outcome is the ephemeral result of one orchestration. It is returned
// synchronously and never persisted; the caller uses FailedAt to decide
// whether to advance dependent state.
type Outcome struct {
	// Primary is the rail result of the user-facing operation.
	Primary ledger.Result

	// Commission is the rail result of the commission capture, nil when
	// no commission step ran.
	Commission *ledger.Result

	// FailedAt identifies the first failing step, StageNone on full
	// success.
	FailedAt Stage
}

// TransferService orchestrates fund movements against the settlement
// rail: a primary value transfer optionally paired with a commission
// transfer to the operator's house account. Each ledger call is
// attempted exactly once; nothing is retried and nothing is rolled back.
type TransferService struct {
	ledger      ledger.Client
	rates       *rates.Provider
	houseHandle string
}

// NewTransferService creates a transfer orchestrator.
func NewTransferService(ledgerClient ledger.Client, provider *rates.Provider, houseHandle string) *TransferService {
	return &TransferService{
		ledger:      ledgerClient,
		rates:       provider,
		houseHandle: houseHandle,
	}
}

// Execute performs the primary transfer first, then the commission
// capture if one is configured. The ordering is deliberate: the user's
// requested transfer must not be blocked or reversed by a failure in the
// operator's own fee capture. A commission failure is reported to the
// caller as StageCommission with the primary already settled.
func (s *TransferService) Execute(ctx context.Context, amount float64, payer *models.User, payeeHandle string, commission *Commission) (Outcome, error) {
	primary, err := s.ledger.Transfer(ctx, amount, payer.Handle, payer.PrivateKey, payeeHandle)
	if err != nil {
		return Outcome{FailedAt: StagePrimary}, fmt.Errorf("transfer call failed: %w", err)
	}
	if !primary.OK {
		return Outcome{Primary: primary, FailedAt: StagePrimary}, newLedgerError(StagePrimary, primary.Payload)
	}

	out := Outcome{Primary: primary, FailedAt: StageNone}
	if commission == nil || commission.Amount <= 0 {
		return out, nil
	}

	capture, err := s.ledger.Transfer(ctx, commission.Amount, payer.Handle, payer.PrivateKey, commission.Recipient)
	if err != nil {
		out.FailedAt = StageCommission
		return out, fmt.Errorf("commission transfer call failed: %w", err)
	}
	out.Commission = &capture
	if !capture.OK {
		// The primary transfer has already settled on the rail and is
		// not reversed; the caller must surface this as a
		// reconciliation-worthy failure.
		out.FailedAt = StageCommission
		slog.Error("Commission capture failed after settled primary transfer",
			"payer_handle", payer.Handle,
			"amount", amount,
			"commission", commission.Amount,
		)
		return out, newLedgerError(StageCommission, capture.Payload)
	}

	return out, nil
}

// Transfer sends money from the user to another rail handle. No
// commission is configured on the plain transfer path.
func (s *TransferService) Transfer(ctx context.Context, user *models.User, amount float64, destinationHandle string) (Outcome, error) {
	if amount <= 0 {
		return Outcome{}, ErrInvalidAmount
	}
	return s.Execute(ctx, amount, user, destinationHandle, nil)
}

// Fund moves money from the user's linked bank account into their
// wallet. The commission is captured before the issue: the fee is paid
// to get the service, and a failed fee capture means no funds are
// issued.
func (s *TransferService) Fund(ctx context.Context, user *models.User, amount float64, processingType, accountName string) (Outcome, error) {
	commission, err := s.commissionFor(ctx, processingType)
	if err != nil {
		return Outcome{}, err
	}

	// The user must fund at least one unit on top of the fee. Checked
	// before any ledger call so nothing partial can happen.
	if amount < 1+commission {
		return Outcome{}, ErrInsufficientBalance
	}

	out := Outcome{FailedAt: StageNone}
	capture, err := s.ledger.Transfer(ctx, commission, user.Handle, user.PrivateKey, s.houseHandle)
	if err != nil {
		out.FailedAt = StageCommission
		return out, fmt.Errorf("commission transfer call failed: %w", err)
	}
	out.Commission = &capture
	if !capture.OK {
		out.FailedAt = StageCommission
		return out, newLedgerError(StageCommission, capture.Payload)
	}

	issued, err := s.ledger.Issue(ctx, amount, user.Handle, user.PrivateKey, accountName, processingType)
	if err != nil {
		out.FailedAt = StagePrimary
		return out, fmt.Errorf("issue call failed: %w", err)
	}
	out.Primary = issued
	if !issued.OK {
		out.FailedAt = StagePrimary
		return out, newLedgerError(StagePrimary, issued.Payload)
	}

	return out, nil
}

// Redeem moves money from the user's wallet back to their bank account.
// The wallet balance is confirmed to cover amount plus commission before
// any transfer is attempted, so a knowable shortfall never leaves a
// partially-executed operation. The commission is then captured before
// the redeem.
func (s *TransferService) Redeem(ctx context.Context, user *models.User, amount float64, processingType, accountName string) (Outcome, error) {
	commission, err := s.commissionFor(ctx, processingType)
	if err != nil {
		return Outcome{}, err
	}

	balanceRes, err := s.ledger.Balance(ctx, user.WalletAddress)
	if err != nil {
		return Outcome{}, fmt.Errorf("balance call failed: %w", err)
	}
	if !balanceRes.OK {
		return Outcome{}, fmt.Errorf("failed to get own wallet balance")
	}

	balance := gjson.GetBytes(balanceRes.Payload, "balance").Float()
	if balance < amount+commission {
		return Outcome{}, ErrInsufficientBalance
	}

	out := Outcome{FailedAt: StageNone}
	capture, err := s.ledger.Transfer(ctx, commission, user.Handle, user.PrivateKey, s.houseHandle)
	if err != nil {
		out.FailedAt = StageCommission
		return out, fmt.Errorf("commission transfer call failed: %w", err)
	}
	out.Commission = &capture
	if !capture.OK {
		out.FailedAt = StageCommission
		return out, newLedgerError(StageCommission, capture.Payload)
	}

	redeemed, err := s.ledger.Redeem(ctx, amount, user.Handle, user.PrivateKey, accountName, processingType)
	if err != nil {
		out.FailedAt = StagePrimary
		return out, fmt.Errorf("redeem call failed: %w", err)
	}
	out.Primary = redeemed
	if !redeemed.OK {
		out.FailedAt = StagePrimary
		return out, newLedgerError(StagePrimary, redeemed.Payload)
	}

	return out, nil
}

// Cancel asks the rail to cancel an in-flight transaction.
func (s *TransferService) Cancel(ctx context.Context, user *models.User, txID string) (ledger.Result, error) {
	res, err := s.ledger.CancelTransaction(ctx, user.Handle, user.PrivateKey, txID)
	if err != nil {
		return ledger.Result{}, fmt.Errorf("cancel call failed: %w", err)
	}
	if !res.OK {
		return res, newLedgerError(StagePrimary, res.Payload)
	}
	return res, nil
}

// Transactions lists the user's rail transactions.
func (s *TransferService) Transactions(ctx context.Context, user *models.User, filters url.Values) (ledger.Result, error) {
	res, err := s.ledger.Transactions(ctx, user.Handle, user.PrivateKey, filters)
	if err != nil {
		return ledger.Result{}, fmt.Errorf("transactions call failed: %w", err)
	}
	if !res.OK {
		return res, newLedgerError(StagePrimary, res.Payload)
	}
	return res, nil
}

// commissionFor fetches a fresh price table and returns the fee for one
// processing type. Charged operations never reuse a cached figure.
func (s *TransferService) commissionFor(ctx context.Context, processingType string) (float64, error) {
	charges, err := s.rates.Charges(ctx)
	if err != nil {
		return 0, err
	}
	return charges.For(processingType)
}
