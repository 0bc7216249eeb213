package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/potluckhq/potluck/internal/fault"
	"github.com/potluckhq/potluck/internal/models"
)

const contributionColumns = `id, group_id, contributor_id, receiver_id, period_key,
	amount_cents, status, contribution_date, note, transaction_id, created_at, updated_at`

// GetContribution retrieves a contribution by id.
func (s *SQLiteStore) GetContribution(ctx context.Context, id string) (*models.Contribution, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+contributionColumns+` FROM contributions WHERE id = ?`, id)
	c, err := scanContribution(row)
	if err == sql.ErrNoRows {
		return nil, fault.NotFound("contribution not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contribution: %w", err)
	}
	return c, nil
}

// GetContributionForPeriod retrieves the contribution for one obligation.
// Returns nil, nil when no row exists yet: the obligation is implicitly
// not_paid until the first markPaid creates it.
func (s *SQLiteStore) GetContributionForPeriod(ctx context.Context, groupID, contributorID, periodKey string) (*models.Contribution, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+contributionColumns+` FROM contributions
		 WHERE group_id = ? AND contributor_id = ? AND period_key = ?`,
		groupID, contributorID, periodKey)
	c, err := scanContribution(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contribution for period: %w", err)
	}
	return c, nil
}

// ListGroupContributions retrieves all contributions of a group.
func (s *SQLiteStore) ListGroupContributions(ctx context.Context, groupID string) ([]*models.Contribution, error) {
	return s.listContributions(ctx, "group_id", groupID)
}

// ListUserContributions retrieves all contributions made by a user, across groups.
func (s *SQLiteStore) ListUserContributions(ctx context.Context, userID string) ([]*models.Contribution, error) {
	return s.listContributions(ctx, "contributor_id", userID)
}

func (s *SQLiteStore) listContributions(ctx context.Context, column, value string) ([]*models.Contribution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contributionColumns+` FROM contributions WHERE `+column+` = ? ORDER BY created_at`,
		value)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*models.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}
	return contributions, nil
}

func scanContribution(row rowScanner) (*models.Contribution, error) {
	c := &models.Contribution{}
	var (
		status               string
		contributionDate     sql.NullInt64
		note, transactionID  sql.NullString
		createdAt, updatedAt int64
	)
	err := row.Scan(&c.ID, &c.GroupID, &c.ContributorID, &c.ReceiverID, &c.PeriodKey,
		&c.AmountCents, &status, &contributionDate, &note, &transactionID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.Status = models.ContributionStatus(status)
	c.ContributionDate = timeFromUnix(contributionDate)
	c.Note = note.String
	c.TransactionID = transactionID.String
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	c.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return c, nil
}
