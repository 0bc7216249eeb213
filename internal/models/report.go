package models

import (
	"time"

	"github.com/potluckhq/potluck/internal/fault"
)

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportPending ReportStatus = "pending"
	// ReportResolved reports were reviewed and upheld; they keep penalizing
	// scores, at a lower weight than pending ones.
	ReportResolved ReportStatus = "resolved"
	// ReportDismissed reports are inert: no score effect.
	ReportDismissed ReportStatus = "dismissed"
)

// Report is a moderation report against a user or a group (exactly one of the
// two targets is set).
type Report struct {
	ID              string
	ReporterID      string
	ReportedUserID  string
	ReportedGroupID string
	Reason          string
	Status          ReportStatus
	CreatedAt       time.Time
}

// NewReport builds a validated report. Exactly one of reportedUserID and
// reportedGroupID must be set.
func NewReport(reporterID, reportedUserID, reportedGroupID, reason string, now time.Time) (*Report, error) {
	if (reportedUserID == "") == (reportedGroupID == "") {
		return nil, fault.Validation("report exactly one of a user or a group")
	}
	if reason == "" {
		return nil, fault.Validation("report reason is required")
	}
	return &Report{
		ReporterID:      reporterID,
		ReportedUserID:  reportedUserID,
		ReportedGroupID: reportedGroupID,
		Reason:          reason,
		Status:          ReportPending,
		CreatedAt:       now.UTC(),
	}, nil
}

// ReportCounts aggregates a target's reports by moderation state.
// Dismissed reports are not counted anywhere.
type ReportCounts struct {
	Pending  int
	Resolved int
}
