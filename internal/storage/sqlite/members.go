package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/potluckhq/potluck/internal/fault"
	"github.com/potluckhq/potluck/internal/models"
)

// AddMember persists a new membership.
func (s *SQLiteStore) AddMember(ctx context.Context, m *models.Membership) error {
	return insertMember(ctx, s.db, m)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMember(ctx context.Context, db execer, m *models.Membership) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role, status, joined_at)
		 VALUES (?, ?, ?, ?, ?)`,
		m.GroupID, m.UserID, string(m.Role), string(m.Status), m.JoinedAt.UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// GetMember retrieves a membership. Returns a NotFound fault when the user is
// not in the group.
func (s *SQLiteStore) GetMember(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	m := &models.Membership{}
	var role, status string
	var joinedAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT group_id, user_id, role, status, joined_at
		 FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	).Scan(&m.GroupID, &m.UserID, &role, &status, &joinedAt)
	if err == sql.ErrNoRows {
		return nil, fault.NotFound("user %s is not a member of group %s", userID, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	m.Role = models.Role(role)
	m.Status = models.MemberStatus(status)
	m.JoinedAt = time.Unix(joinedAt, 0).UTC()
	return m, nil
}

// SetMemberStatus updates a member's standing.
func (s *SQLiteStore) SetMemberStatus(ctx context.Context, groupID, userID string, status models.MemberStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE group_members SET status = ? WHERE group_id = ? AND user_id = ?`,
		string(status), groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fault.NotFound("user %s is not a member of group %s", userID, groupID)
	}
	return nil
}

// ListMembers retrieves all memberships of a group.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]*models.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, user_id, role, status, joined_at
		 FROM group_members WHERE group_id = ? ORDER BY joined_at`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		var role, status string
		var joinedAt int64
		if err := rows.Scan(&m.GroupID, &m.UserID, &role, &status, &joinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.Role = models.Role(role)
		m.Status = models.MemberStatus(status)
		m.JoinedAt = time.Unix(joinedAt, 0).UTC()
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// MemberBirthdays returns the birthdays of a group's members, keyed by user id.
func (s *SQLiteStore) MemberBirthdays(ctx context.Context, groupID string) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.birthday
		 FROM users u
		 INNER JOIN group_members gm ON gm.user_id = u.id
		 WHERE gm.group_id = ? AND u.birthday IS NOT NULL`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query birthdays: %w", err)
	}
	defer rows.Close()

	birthdays := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var birthday int64
		if err := rows.Scan(&id, &birthday); err != nil {
			return nil, fmt.Errorf("failed to scan birthday: %w", err)
		}
		birthdays[id] = time.Unix(birthday, 0).UTC()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate birthdays: %w", err)
	}
	return birthdays, nil
}
