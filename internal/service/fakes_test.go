package service

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/buzzware/cash/internal/ledger"
	"github.com/buzzware/cash/internal/models"
	"github.com/buzzware/cash/internal/notify"
	"github.com/buzzware/cash/internal/storage/sqlite"
)

// reply is one scripted rail response.
type reply struct {
	res ledger.Result
	err error
}

func okReply() reply {
	return reply{res: ledger.Result{OK: true, Payload: json.RawMessage(`{"status":"ok"}`)}}
}

type transferCall struct {
	amount      float64
	payerHandle string
	payeeHandle string
}

// fakeLedger returns scripted results per operation. Transfer replies
// are consumed as a queue so tests can script a success followed by a
// failure; an exhausted queue yields success.
type fakeLedger struct {
	checkHandle reply
	balance     reply
	issue       reply
	redeem      reply
	cancel      reply
	txns        reply
	wallets     reply
	requestKYC  reply
	checkKYC    reply

	transferQueue []reply
	transferCalls []transferCall

	issueCalls  int
	redeemCalls int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		checkHandle: okReply(),
		balance:     okReply(),
		issue:       okReply(),
		redeem:      okReply(),
		cancel:      okReply(),
		txns:        okReply(),
		wallets:     okReply(),
		requestKYC:  okReply(),
		checkKYC:    okReply(),
	}
}

func (f *fakeLedger) CheckHandle(_ context.Context, _ string) (ledger.Result, error) {
	return f.checkHandle.res, f.checkHandle.err
}

func (f *fakeLedger) Balance(_ context.Context, _ string) (ledger.Result, error) {
	return f.balance.res, f.balance.err
}

func (f *fakeLedger) Transfer(_ context.Context, amount float64, payerHandle, _, payeeHandle string) (ledger.Result, error) {
	f.transferCalls = append(f.transferCalls, transferCall{
		amount:      amount,
		payerHandle: payerHandle,
		payeeHandle: payeeHandle,
	})
	if len(f.transferQueue) == 0 {
		r := okReply()
		return r.res, r.err
	}
	next := f.transferQueue[0]
	f.transferQueue = f.transferQueue[1:]
	return next.res, next.err
}

func (f *fakeLedger) Issue(_ context.Context, _ float64, _, _, _, _ string) (ledger.Result, error) {
	f.issueCalls++
	return f.issue.res, f.issue.err
}

func (f *fakeLedger) Redeem(_ context.Context, _ float64, _, _, _, _ string) (ledger.Result, error) {
	f.redeemCalls++
	return f.redeem.res, f.redeem.err
}

func (f *fakeLedger) CancelTransaction(_ context.Context, _, _, _ string) (ledger.Result, error) {
	return f.cancel.res, f.cancel.err
}

func (f *fakeLedger) Transactions(_ context.Context, _, _ string, _ url.Values) (ledger.Result, error) {
	return f.txns.res, f.txns.err
}

func (f *fakeLedger) Wallets(_ context.Context, _, _ string) (ledger.Result, error) {
	return f.wallets.res, f.wallets.err
}

func (f *fakeLedger) RequestKYC(_ context.Context, _, _ string) (ledger.Result, error) {
	return f.requestKYC.res, f.requestKYC.err
}

func (f *fakeLedger) CheckKYC(_ context.Context, _, _ string) (ledger.Result, error) {
	return f.checkKYC.res, f.checkKYC.err
}

// fakeNotifier records every message it is asked to send.
type fakeNotifier struct {
	sent []notify.Message
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, msg notify.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "cash-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func seedUser(t *testing.T, store *sqlite.SQLiteStore, user *models.User) *models.User {
	t.Helper()
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to seed user %s: %v", user.ID, err)
	}
	return user
}
