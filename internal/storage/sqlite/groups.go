package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/potluckhq/potluck/internal/fault"
	"github.com/potluckhq/potluck/internal/models"
)

const groupColumns = `id, name, group_type, currency, amount_cents, status,
	frequency, deadline_day, deadline_month, deadline_unix, created_by, created_at`

// CreateGroup persists a new group together with its admin membership.
func (s *SQLiteStore) CreateGroup(ctx context.Context, g *models.Group, admin *models.Membership) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, group_type, currency, amount_cents, status,
			frequency, deadline_day, deadline_month, deadline_unix, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, string(g.Type), g.Currency, g.AmountCents, string(g.Status),
		stringOrNil(string(g.Frequency)), intOrNil(g.DeadlineDay), intOrNil(int(g.DeadlineMonth)),
		unixOrNil(g.Deadline), g.CreatedBy, g.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	if admin != nil {
		admin.GroupID = g.ID
		if err := insertMember(ctx, tx, admin); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by id.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = ?`, id)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, fault.NotFound("group not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return g, nil
}

// SetGroupStatus updates a group's lifecycle status.
func (s *SQLiteStore) SetGroupStatus(ctx context.Context, id string, status models.GroupStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE groups SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update group status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fault.NotFound("group not found: %s", id)
	}
	return nil
}

// ListGroupsForUser retrieves every group the user belongs to.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.group_type, g.currency, g.amount_cents, g.status,
			g.frequency, g.deadline_day, g.deadline_month, g.deadline_unix, g.created_by, g.created_at
		 FROM groups g
		 INNER JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = ?
		 ORDER BY g.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (*models.Group, error) {
	g := &models.Group{}
	var (
		gtype, status        string
		frequency            sql.NullString
		day, month, deadline sql.NullInt64
		createdAt            int64
	)
	err := row.Scan(&g.ID, &g.Name, &gtype, &g.Currency, &g.AmountCents, &status,
		&frequency, &day, &month, &deadline, &g.CreatedBy, &createdAt)
	if err != nil {
		return nil, err
	}
	g.Type = models.GroupType(gtype)
	g.Status = models.GroupStatus(status)
	if frequency.Valid {
		g.Frequency = models.Frequency(frequency.String)
	}
	if day.Valid {
		g.DeadlineDay = int(day.Int64)
	}
	if month.Valid {
		g.DeadlineMonth = time.Month(month.Int64)
	}
	g.Deadline = timeFromUnix(deadline)
	g.CreatedAt = time.Unix(createdAt, 0).UTC()
	return g, nil
}

func intOrNil(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
