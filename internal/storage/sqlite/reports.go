package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/potluckhq/potluck/internal/fault"
	"github.com/potluckhq/potluck/internal/models"
)

// CreateReport persists a new moderation report.
func (s *SQLiteStore) CreateReport(ctx context.Context, r *models.Report) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, reporter_id, reported_user_id, reported_group_id, reason, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ReporterID, stringOrNil(r.ReportedUserID), stringOrNil(r.ReportedGroupID),
		r.Reason, string(r.Status), r.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// SetReportStatus moves a report through moderation.
func (s *SQLiteStore) SetReportStatus(ctx context.Context, id string, status models.ReportStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fault.NotFound("report not found: %s", id)
	}
	return nil
}

// CountReportsForUser aggregates a user's reports by moderation state.
// Dismissed reports are inert and never counted.
func (s *SQLiteStore) CountReportsForUser(ctx context.Context, userID string) (models.ReportCounts, error) {
	return s.countReports(ctx, "reported_user_id", userID)
}

// CountReportsForGroup aggregates a group's reports by moderation state.
func (s *SQLiteStore) CountReportsForGroup(ctx context.Context, groupID string) (models.ReportCounts, error) {
	return s.countReports(ctx, "reported_group_id", groupID)
}

func (s *SQLiteStore) countReports(ctx context.Context, column, value string) (models.ReportCounts, error) {
	var counts models.ReportCounts
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM reports WHERE `+column+` = ? GROUP BY status`,
		value,
	)
	if err != nil {
		return counts, fmt.Errorf("failed to count reports: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return counts, fmt.Errorf("failed to scan report count: %w", err)
		}
		switch models.ReportStatus(status) {
		case models.ReportPending:
			counts.Pending = n
		case models.ReportResolved:
			counts.Resolved = n
		}
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("failed to iterate report counts: %w", err)
	}
	return counts, nil
}
