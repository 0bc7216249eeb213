package models

import "time"

// EntryType is the kind of ledger entry.
type EntryType string

const (
	// EntryDebit records the contributor's side of a settlement. Debits are
	// bookkeeping only: peer contributions never decrement the contributor's
	// wallet, the debit row just feeds their activity feed.
	EntryDebit EntryType = "debit"
	// EntryCredit records money credited to the receiver's wallet.
	EntryCredit EntryType = "credit"
	// EntryWithdrawal records money leaving a wallet. The only entry type that
	// decrements a balance.
	EntryWithdrawal EntryType = "withdrawal"
)

// Transaction is an immutable ledger entry. Rows are never deleted; the status
// column mirrors the linked contribution's status and is the only mutable field.
type Transaction struct {
	ID          string
	UserID      string
	GroupID     string
	Type        EntryType
	AmountCents int64
	Status      ContributionStatus
	Description string

	// Reference is the idempotency key: "<groupID>:<contributorID>:<periodKey>"
	// for settlement pairs. UNIQUE(reference, entry_type) in storage guarantees
	// at most one pair per period no matter how often a request is retried.
	Reference string

	CreatedAt time.Time
}

// SettlementReference builds the idempotency key for a contribution's ledger pair.
func SettlementReference(groupID, contributorID, periodKey string) string {
	return groupID + ":" + contributorID + ":" + periodKey
}

// Wallet is a per-user, per-currency balance. It is mutated only inside the
// same transaction that inserts the corresponding ledger entries, so the
// balance always equals the signed sum of that user's credits and withdrawals.
type Wallet struct {
	UserID       string
	Currency     string
	BalanceCents int64
}
