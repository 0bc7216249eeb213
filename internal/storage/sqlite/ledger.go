package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/potluckhq/potluck/internal/fault"
	"github.com/potluckhq/potluck/internal/models"
	"github.com/potluckhq/potluck/internal/storage"
)

// SaveContribution upserts a contribution row and keeps the ledger consistent
// with it, all inside a single transaction:
//
//  1. insert or update the contribution row
//  2. LedgerRecord and LedgerSettle create the debit/credit pair on first use
//     (verifying none exists for the period yet) and link the debit entry
//     back onto the contribution
//  3. an already-linked pair has its status and amount updated in place to
//     mirror the contribution, never duplicated
//  4. LedgerSettle additionally credits the receiver's wallet; settling an
//     already-settled period is a Conflict
//
// Peer contributions never decrement the contributor's wallet; the debit row
// is bookkeeping for their activity feed. Any failure rolls the whole unit
// back, so a contribution state change and its ledger effect commit together
// or not at all.
func (s *SQLiteStore) SaveContribution(ctx context.Context, c *models.Contribution, action storage.LedgerAction) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.New().String()
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO contributions (id, group_id, contributor_id, receiver_id, period_key,
			amount_cents, status, contribution_date, note, transaction_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			amount_cents = excluded.amount_cents,
			status = excluded.status,
			contribution_date = excluded.contribution_date,
			note = excluded.note,
			updated_at = excluded.updated_at`,
		c.ID, c.GroupID, c.ContributorID, c.ReceiverID, c.PeriodKey,
		c.AmountCents, string(c.Status), unixOrNil(c.ContributionDate), stringOrNil(c.Note),
		stringOrNil(c.TransactionID), c.CreatedAt.Unix(), c.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert contribution: %w", err)
	}

	reference := models.SettlementReference(c.GroupID, c.ContributorID, c.PeriodKey)

	if c.TransactionID == "" && action != storage.LedgerNone {
		if err := insertPairInTx(ctx, tx, c, reference, now); err != nil {
			return err
		}
	} else if c.TransactionID != "" {
		if action == storage.LedgerSettle {
			// Guard against racing double settlement: the pair must not
			// already be confirmed.
			var status string
			if err := tx.QueryRowContext(ctx,
				`SELECT status FROM transactions WHERE id = ?`, c.TransactionID,
			).Scan(&status); err != nil {
				return fmt.Errorf("failed to read linked entry: %w", err)
			}
			if models.ContributionStatus(status) == models.ContributionConfirmed {
				return fault.Conflict("contribution %s is already settled", c.ID)
			}
		}
		// Mirror the contribution's status and amount onto the existing pair
		// in place; a resubmitted claim may carry a new amount, and the wallet
		// credit at settle time uses the contribution's amount. Never create a
		// second pair for the same period.
		if _, err := tx.ExecContext(ctx,
			`UPDATE transactions SET status = ?, amount_cents = ? WHERE reference = ?`,
			string(c.Status), c.AmountCents, reference,
		); err != nil {
			return fmt.Errorf("failed to mirror contribution onto transactions: %w", err)
		}
	}

	if action == storage.LedgerSettle {
		if err := creditWalletInTx(ctx, tx, c); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertPairInTx records the debit/credit pair for a contribution and links
// the debit entry back, inside the caller's transaction.
func insertPairInTx(ctx context.Context, tx *sql.Tx, c *models.Contribution, reference string, now time.Time) error {
	var existing int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE reference = ?`, reference,
	).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check for existing pair: %w", err)
	}
	if existing > 0 {
		return fault.Conflict("ledger pair already exists for %s", reference)
	}

	debitID := uuid.New().String()
	creditID := uuid.New().String()
	description := fmt.Sprintf("contribution %s (%s)", c.PeriodKey, now.Format("2006-01-02"))

	insert := `INSERT INTO transactions (id, user_id, group_id, entry_type, amount_cents,
		status, description, reference, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := tx.ExecContext(ctx, insert,
		debitID, c.ContributorID, c.GroupID, string(models.EntryDebit), c.AmountCents,
		string(c.Status), description, reference, now.Unix(),
	); err != nil {
		return fmt.Errorf("failed to insert debit entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insert,
		creditID, c.ReceiverID, c.GroupID, string(models.EntryCredit), c.AmountCents,
		string(c.Status), description, reference, now.Unix(),
	); err != nil {
		return fmt.Errorf("failed to insert credit entry: %w", err)
	}

	c.TransactionID = debitID
	if _, err := tx.ExecContext(ctx,
		`UPDATE contributions SET transaction_id = ? WHERE id = ?`,
		debitID, c.ID,
	); err != nil {
		return fmt.Errorf("failed to link transaction onto contribution: %w", err)
	}
	return nil
}

// creditWalletInTx increments the receiver's wallet by the contribution
// amount, inside the caller's transaction.
func creditWalletInTx(ctx context.Context, tx *sql.Tx, c *models.Contribution) error {
	var currency string
	if err := tx.QueryRowContext(ctx,
		`SELECT currency FROM groups WHERE id = ?`, c.GroupID,
	).Scan(&currency); err != nil {
		return fmt.Errorf("failed to resolve group currency: %w", err)
	}

	// In-place balance update: the row lock taken by this statement serializes
	// concurrent credits to the same wallet.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wallets (user_id, currency, balance_cents) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, currency) DO UPDATE SET
			balance_cents = balance_cents + excluded.balance_cents`,
		c.ReceiverID, currency, c.AmountCents,
	); err != nil {
		return fmt.Errorf("failed to credit receiver wallet: %w", err)
	}
	return nil
}

// GetWallet retrieves a wallet, returning a zero balance when none exists yet.
func (s *SQLiteStore) GetWallet(ctx context.Context, userID, currency string) (*models.Wallet, error) {
	w := &models.Wallet{UserID: userID, Currency: currency}
	err := s.db.QueryRowContext(ctx,
		`SELECT balance_cents FROM wallets WHERE user_id = ? AND currency = ?`,
		userID, currency,
	).Scan(&w.BalanceCents)
	if err == sql.ErrNoRows {
		return w, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return w, nil
}

// ListTransactions retrieves a user's ledger entries, newest first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, group_id, entry_type, amount_cents, status, description, reference, created_at
		 FROM transactions WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		t := &models.Transaction{}
		var groupID sql.NullString
		var entryType, status string
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.UserID, &groupID, &entryType, &t.AmountCents,
			&status, &t.Description, &t.Reference, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.GroupID = groupID.String
		t.Type = models.EntryType(entryType)
		t.Status = models.ContributionStatus(status)
		t.CreatedAt = time.Unix(createdAt, 0).UTC()
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

// Withdraw atomically checks funds, decrements the wallet, and records the
// withdrawal entry. The only flow that reduces a wallet balance.
func (s *SQLiteStore) Withdraw(ctx context.Context, userID, currency string, amountCents int64, description string, now time.Time) (*models.Transaction, error) {
	if amountCents <= 0 {
		return nil, fault.Validation("withdrawal amount must be positive")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT balance_cents FROM wallets WHERE user_id = ? AND currency = ?`,
		userID, currency,
	).Scan(&balance)
	if err == sql.ErrNoRows || (err == nil && balance < amountCents) {
		return nil, fault.Conflict("insufficient funds")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents - ? WHERE user_id = ? AND currency = ?`,
		amountCents, userID, currency,
	); err != nil {
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}

	t := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        models.EntryWithdrawal,
		AmountCents: amountCents,
		Status:      models.ContributionConfirmed,
		Description: description,
		Reference:   fmt.Sprintf("withdrawal:%s:%s", userID, uuid.New().String()),
		CreatedAt:   now.UTC(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, group_id, entry_type, amount_cents,
			status, description, reference, created_at)
		 VALUES (?, ?, NULL, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Type), t.AmountCents, string(t.Status),
		t.Description, t.Reference, t.CreatedAt.Unix(),
	); err != nil {
		return nil, fmt.Errorf("failed to insert withdrawal entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return t, nil
}
