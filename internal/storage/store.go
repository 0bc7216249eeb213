// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"

	"github.com/potluckhq/potluck/internal/models"
)

// LedgerAction tells SaveContribution what ledger effect accompanies the row
// change.
type LedgerAction int

const (
	// LedgerNone changes the contribution row only (the pair, if linked,
	// still mirrors the new status).
	LedgerNone LedgerAction = iota
	// LedgerRecord ensures the debit/credit pair exists for the period,
	// without touching wallet balances. Used when a contribution is marked
	// paid.
	LedgerRecord
	// LedgerSettle credits the receiver's wallet and is valid exactly once
	// per contribution. Used when a contribution is confirmed.
	LedgerSettle
)

// Store defines the persistence operations the services depend on. The
// abstraction keeps the service layer independent of the database engine.
//
// Mutating operations that touch more than one table (group creation,
// contribution settlement, withdrawal) are atomic: the implementation commits
// all of their statements or none.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Groups. CreateGroup inserts the group and its admin membership together.
	CreateGroup(ctx context.Context, g *models.Group, admin *models.Membership) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	SetGroupStatus(ctx context.Context, id string, status models.GroupStatus) error
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// Memberships.
	AddMember(ctx context.Context, m *models.Membership) error
	GetMember(ctx context.Context, groupID, userID string) (*models.Membership, error)
	SetMemberStatus(ctx context.Context, groupID, userID string, status models.MemberStatus) error
	ListMembers(ctx context.Context, groupID string) ([]*models.Membership, error)
	// MemberBirthdays returns the birthday of every member of the group,
	// keyed by user id. Members without a birthday on file are omitted.
	MemberBirthdays(ctx context.Context, groupID string) (map[string]time.Time, error)

	// Contributions.
	GetContribution(ctx context.Context, id string) (*models.Contribution, error)
	// GetContributionForPeriod returns nil, nil when no row exists yet.
	GetContributionForPeriod(ctx context.Context, groupID, contributorID, periodKey string) (*models.Contribution, error)
	ListGroupContributions(ctx context.Context, groupID string) ([]*models.Contribution, error)
	ListUserContributions(ctx context.Context, userID string) ([]*models.Contribution, error)
	// SaveContribution upserts the contribution row and keeps the ledger in
	// step, all in one transaction. LedgerRecord ensures the debit/credit pair
	// exists (created at most once per period); LedgerSettle additionally
	// credits the receiver's wallet, exactly once. Whenever the row already
	// carries a linked pair, the pair's status is updated in place to mirror
	// the contribution.
	SaveContribution(ctx context.Context, c *models.Contribution, action LedgerAction) error

	// Ledger.
	GetWallet(ctx context.Context, userID, currency string) (*models.Wallet, error)
	ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error)
	// Withdraw atomically checks funds, decrements the wallet, and records the
	// withdrawal entry.
	Withdraw(ctx context.Context, userID, currency string, amountCents int64, description string, now time.Time) (*models.Transaction, error)

	// Reports.
	CreateReport(ctx context.Context, r *models.Report) error
	SetReportStatus(ctx context.Context, id string, status models.ReportStatus) error
	CountReportsForUser(ctx context.Context, userID string) (models.ReportCounts, error)
	CountReportsForGroup(ctx context.Context, groupID string) (models.ReportCounts, error)

	// Close releases any resources held by the store.
	Close() error
}
