package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/buzzware/cash/internal/ledger"
	"github.com/buzzware/cash/internal/models"
)

// WalletService exposes the rail's wallet queries. All methods are
// read-only passthroughs; the rail owns balances.
type WalletService struct {
	ledger ledger.Client
}

// NewWalletService creates a wallet query service.
func NewWalletService(ledgerClient ledger.Client) *WalletService {
	return &WalletService{ledger: ledgerClient}
}

// OwnBalance returns the balance payload for the user's own wallet.
func (s *WalletService) OwnBalance(ctx context.Context, user *models.User) (json.RawMessage, error) {
	return s.BalanceOf(ctx, user.WalletAddress)
}

// BalanceOf returns the balance payload for an arbitrary wallet address.
func (s *WalletService) BalanceOf(ctx context.Context, walletAddress string) (json.RawMessage, error) {
	res, err := s.ledger.Balance(ctx, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("balance call failed: %w", err)
	}
	if !res.OK {
		return nil, newLedgerError(StagePrimary, res.Payload)
	}
	return res.Payload, nil
}

// Wallets lists the wallets registered for the user on the rail.
func (s *WalletService) Wallets(ctx context.Context, user *models.User) (json.RawMessage, error) {
	res, err := s.ledger.Wallets(ctx, user.Handle, user.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("wallets call failed: %w", err)
	}
	if !res.OK {
		return nil, newLedgerError(StagePrimary, res.Payload)
	}
	return res.Payload, nil
}
