package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/potluckhq/potluck/internal/eventlog"
	"github.com/potluckhq/potluck/internal/metrics"
	"github.com/potluckhq/potluck/internal/models"
	"github.com/potluckhq/potluck/internal/storage"
)

// WalletService exposes a user's ledger: balance, entry history, withdrawal.
type WalletService struct {
	store   storage.Store
	events  *eventlog.Worker
	metrics *metrics.Metrics
}

// NewWalletService creates a wallet service. events and m may be nil.
func NewWalletService(store storage.Store, events *eventlog.Worker, m *metrics.Metrics) *WalletService {
	return &WalletService{store: store, events: events, metrics: m}
}

// Balance returns the user's wallet for the currency, zero when untouched.
func (s *WalletService) Balance(ctx context.Context, userID, currency string) (*models.Wallet, error) {
	return s.store.GetWallet(ctx, userID, currency)
}

// Transactions returns the user's ledger entries, newest first.
func (s *WalletService) Transactions(ctx context.Context, userID string) ([]*models.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// Withdraw moves money out of the user's wallet. Funds check, balance
// decrement, and the withdrawal entry commit atomically; overdrawing is a
// Conflict.
func (s *WalletService) Withdraw(ctx context.Context, userID, currency string, amountCents int64, description string, now time.Time) (*models.Transaction, error) {
	t, err := s.store.Withdraw(ctx, userID, currency, amountCents, description, now)
	if err != nil {
		return nil, err
	}

	slog.Info("withdrawal completed",
		"user_id", userID,
		"currency", currency,
		"amount_cents", amountCents,
	)
	s.metrics.ObserveWithdrawal()
	if s.events != nil {
		s.events.Log(eventlog.NewEvent(
			eventlog.WithType(eventlog.TypeWithdrawal),
			eventlog.WithData(map[string]string{
				"transaction_id": t.ID,
				"user_id":        userID,
			}),
		))
	}
	return t, nil
}
