package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/buzzware/cash/internal/ledger"
	"github.com/buzzware/cash/internal/models"
	"github.com/buzzware/cash/internal/rates"
)

const houseHandle = "buzzware"

func newTransferHarness(t *testing.T) (*TransferService, *fakeLedger) {
	t.Helper()

	store := newTestStore(t)
	ctx := context.Background()
	if err := store.SetCharge(ctx, models.Charge{Type: "STANDARD_ACH", Price: 0.25}); err != nil {
		t.Fatalf("Failed to seed charges: %v", err)
	}

	rail := newFakeLedger()
	svc := NewTransferService(rail, rates.NewProvider(store), houseHandle)
	return svc, rail
}

func payer() *models.User {
	return &models.User{
		ID:            "payer-id",
		Handle:        "payer",
		PrivateKey:    "payer-key",
		WalletAddress: "payer-wallet",
		DisplayName:   "Payer",
		Verified:      true,
	}
}

func TestExecute_PrimaryFailureShortCircuits(t *testing.T) {
	svc, rail := newTransferHarness(t)
	rail.transferQueue = []reply{
		{res: ledger.Result{OK: false, Payload: json.RawMessage(`{"error":"insufficient funds"}`)}},
	}

	out, err := svc.Execute(context.Background(), 10, payer(), "payee", &Commission{Amount: 1, Recipient: houseHandle})
	if err == nil {
		t.Fatal("Expected error for rejected primary transfer")
	}
	if out.FailedAt != StagePrimary {
		t.Errorf("FailedAt mismatch: got %s, want %s", out.FailedAt, StagePrimary)
	}
	if len(rail.transferCalls) != 1 {
		t.Errorf("Expected commission to be skipped after primary failure, got %d transfer calls", len(rail.transferCalls))
	}

	var ledgerErr *LedgerError
	if !errors.As(err, &ledgerErr) {
		t.Fatalf("Expected LedgerError, got %T", err)
	}
	if ledgerErr.Stage != StagePrimary {
		t.Errorf("LedgerError stage mismatch: got %s, want %s", ledgerErr.Stage, StagePrimary)
	}
}

func TestExecute_CommissionFailureDoesNotReversePrimary(t *testing.T) {
	svc, rail := newTransferHarness(t)
	rail.transferQueue = []reply{
		okReply(),
		{res: ledger.Result{OK: false, Payload: json.RawMessage(`{"error":"house account frozen"}`)}},
	}

	out, err := svc.Execute(context.Background(), 10, payer(), "payee", &Commission{Amount: 1, Recipient: houseHandle})
	if err == nil {
		t.Fatal("Expected error for rejected commission capture")
	}
	if out.FailedAt != StageCommission {
		t.Errorf("FailedAt mismatch: got %s, want %s", out.FailedAt, StageCommission)
	}
	if !out.Primary.OK {
		t.Error("Expected primary transfer to remain settled")
	}
	// Exactly two calls: no reversal of the primary is attempted.
	if len(rail.transferCalls) != 2 {
		t.Errorf("Transfer call count mismatch: got %d, want 2", len(rail.transferCalls))
	}
	if err.Error() != "couldn't transact commission" {
		t.Errorf("Error message mismatch: got %q", err.Error())
	}
}

func TestExecute_NoCommissionMakesOneCall(t *testing.T) {
	svc, rail := newTransferHarness(t)

	out, err := svc.Execute(context.Background(), 10, payer(), "payee", nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out.FailedAt != StageNone {
		t.Errorf("FailedAt mismatch: got %s, want %s", out.FailedAt, StageNone)
	}
	if out.Commission != nil {
		t.Error("Expected no commission result")
	}
	if len(rail.transferCalls) != 1 {
		t.Errorf("Transfer call count mismatch: got %d, want 1", len(rail.transferCalls))
	}
}

func TestTransfer_RejectsNonPositiveAmount(t *testing.T) {
	svc, rail := newTransferHarness(t)

	for _, amount := range []float64{0, -5} {
		_, err := svc.Transfer(context.Background(), payer(), amount, "payee")
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %f: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if len(rail.transferCalls) != 0 {
		t.Errorf("Expected no ledger calls, got %d", len(rail.transferCalls))
	}
}

func TestFund_ChargesCommissionBeforeIssuing(t *testing.T) {
	svc, rail := newTransferHarness(t)

	out, err := svc.Fund(context.Background(), payer(), 50, "STANDARD_ACH", "default")
	if err != nil {
		t.Fatalf("Fund failed: %v", err)
	}
	if out.FailedAt != StageNone {
		t.Errorf("FailedAt mismatch: got %s, want %s", out.FailedAt, StageNone)
	}

	if len(rail.transferCalls) != 1 {
		t.Fatalf("Commission call count mismatch: got %d, want 1", len(rail.transferCalls))
	}
	capture := rail.transferCalls[0]
	if capture.amount != 0.25 {
		t.Errorf("Commission amount mismatch: got %f, want 0.25", capture.amount)
	}
	if capture.payeeHandle != houseHandle {
		t.Errorf("Commission recipient mismatch: got %s, want %s", capture.payeeHandle, houseHandle)
	}
	if rail.issueCalls != 1 {
		t.Errorf("Issue call count mismatch: got %d, want 1", rail.issueCalls)
	}
}

func TestFund_RejectsAmountBelowMinimum(t *testing.T) {
	svc, rail := newTransferHarness(t)

	// Minimum is one unit on top of the 0.25 commission.
	_, err := svc.Fund(context.Background(), payer(), 1.0, "STANDARD_ACH", "default")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
	}
	if len(rail.transferCalls) != 0 || rail.issueCalls != 0 {
		t.Errorf("Expected no ledger calls, got %d transfers and %d issues", len(rail.transferCalls), rail.issueCalls)
	}
}

func TestFund_CommissionFailureSkipsIssue(t *testing.T) {
	svc, rail := newTransferHarness(t)
	rail.transferQueue = []reply{
		{res: ledger.Result{OK: false, Payload: json.RawMessage(`{"error":"declined"}`)}},
	}

	out, err := svc.Fund(context.Background(), payer(), 50, "STANDARD_ACH", "default")
	if err == nil {
		t.Fatal("Expected error for rejected commission capture")
	}
	if out.FailedAt != StageCommission {
		t.Errorf("FailedAt mismatch: got %s, want %s", out.FailedAt, StageCommission)
	}
	if rail.issueCalls != 0 {
		t.Errorf("Expected issue to be skipped, got %d calls", rail.issueCalls)
	}
}

func TestFund_FailsWithoutPriceTable(t *testing.T) {
	store := newTestStore(t)
	rail := newFakeLedger()
	svc := NewTransferService(rail, rates.NewProvider(store), houseHandle)

	_, err := svc.Fund(context.Background(), payer(), 50, "STANDARD_ACH", "default")
	if !errors.Is(err, rates.ErrChargesUnavailable) {
		t.Fatalf("Expected ErrChargesUnavailable, got %v", err)
	}
	if len(rail.transferCalls) != 0 || rail.issueCalls != 0 {
		t.Error("Expected no ledger calls without a price table")
	}
}

func TestRedeem_ChecksBalanceBeforeAnyTransfer(t *testing.T) {
	svc, rail := newTransferHarness(t)
	rail.balance = reply{res: ledger.Result{OK: true, Payload: json.RawMessage(`{"balance": 10.0}`)}}

	// 10 on hand cannot cover 10 plus the 0.25 commission.
	_, err := svc.Redeem(context.Background(), payer(), 10, "STANDARD_ACH", "default")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
	}
	if len(rail.transferCalls) != 0 || rail.redeemCalls != 0 {
		t.Errorf("Expected no funds-moving calls, got %d transfers and %d redeems", len(rail.transferCalls), rail.redeemCalls)
	}
}

func TestRedeem_ChargesCommissionThenRedeems(t *testing.T) {
	svc, rail := newTransferHarness(t)
	rail.balance = reply{res: ledger.Result{OK: true, Payload: json.RawMessage(`{"balance": 100.0}`)}}

	out, err := svc.Redeem(context.Background(), payer(), 10, "STANDARD_ACH", "default")
	if err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}
	if out.FailedAt != StageNone {
		t.Errorf("FailedAt mismatch: got %s, want %s", out.FailedAt, StageNone)
	}
	if len(rail.transferCalls) != 1 {
		t.Fatalf("Commission call count mismatch: got %d, want 1", len(rail.transferCalls))
	}
	if rail.transferCalls[0].payeeHandle != houseHandle {
		t.Errorf("Commission recipient mismatch: got %s, want %s", rail.transferCalls[0].payeeHandle, houseHandle)
	}
	if rail.redeemCalls != 1 {
		t.Errorf("Redeem call count mismatch: got %d, want 1", rail.redeemCalls)
	}
}

func TestRedeem_CommissionFailureSkipsRedeem(t *testing.T) {
	svc, rail := newTransferHarness(t)
	rail.balance = reply{res: ledger.Result{OK: true, Payload: json.RawMessage(`{"balance": 100.0}`)}}
	rail.transferQueue = []reply{
		{res: ledger.Result{OK: false, Payload: json.RawMessage(`{"error":"declined"}`)}},
	}

	out, err := svc.Redeem(context.Background(), payer(), 10, "STANDARD_ACH", "default")
	if err == nil {
		t.Fatal("Expected error for rejected commission capture")
	}
	if out.FailedAt != StageCommission {
		t.Errorf("FailedAt mismatch: got %s, want %s", out.FailedAt, StageCommission)
	}
	if rail.redeemCalls != 0 {
		t.Errorf("Expected redeem to be skipped, got %d calls", rail.redeemCalls)
	}
}

func TestCancel_PassesThroughRejection(t *testing.T) {
	svc, rail := newTransferHarness(t)
	rail.cancel = reply{res: ledger.Result{OK: false, Payload: json.RawMessage(`{"error":"already settled"}`)}}

	_, err := svc.Cancel(context.Background(), payer(), "tx-1")
	var ledgerErr *LedgerError
	if !errors.As(err, &ledgerErr) {
		t.Fatalf("Expected LedgerError, got %v", err)
	}
}
