// Package scoring turns compliance history and moderation reports into bounded
// trust scores.
//
// One formula lives here and nowhere else: the base score is the on-time share
// of expected obligations, reports subtract fixed penalties, and the result is
// clamped to [0,100]. A clean slate scores exactly 100.
package scoring

import (
	"math"

	"github.com/potluckhq/potluck/internal/compliance"
	"github.com/potluckhq/potluck/internal/models"
)

// Rating buckets a score for display and gating.
type Rating string

const (
	// RatingNew: no history and no reports.
	RatingNew       Rating = "new"
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingModerate  Rating = "moderate"
	RatingPoor      Rating = "poor"

	// Group analogues of good/poor.
	RatingMostlyHealthy Rating = "mostly_healthy"
	RatingUnhealthy     Rating = "unhealthy"
)

// Report penalty weights. Group health is deliberately less punitive per
// reviewed report than personal reliability.
const (
	PendingReportPenalty       = 5
	UserResolvedReportPenalty  = 3
	GroupResolvedReportPenalty = 2
)

// AutoCloseReportThreshold is the pending-report count at which a group is
// closed automatically.
const AutoCloseReportThreshold = 3

// Score is a computed reliability or health score.
type Score struct {
	Value    int    `json:"score"`
	Rating   Rating `json:"rating"`
	Text     string `json:"text"`
	OnTime   int    `json:"on_time"`
	Expected int    `json:"expected"`
	Overdue  int    `json:"overdue"`
	Pending  int    `json:"pending_confirmation"`
}

// UserReliability scores a user's on-time payment history across groups.
func UserReliability(s compliance.Summary, reports models.ReportCounts) Score {
	return score(s, reports, UserResolvedReportPenalty, userRating, userText)
}

// GroupHealth scores a group's aggregate member compliance.
func GroupHealth(s compliance.Summary, reports models.ReportCounts) Score {
	return score(s, reports, GroupResolvedReportPenalty, groupRating, groupText)
}

// ShouldAutoClose reports whether a group's pending reports have crossed the
// closure threshold.
func ShouldAutoClose(reports models.ReportCounts) bool {
	return reports.Pending >= AutoCloseReportThreshold
}

func score(s compliance.Summary, reports models.ReportCounts, resolvedPenalty int,
	rate func(value int, s compliance.Summary, reports models.ReportCounts) Rating,
	text func(Rating) string) Score {

	value := 100
	if s.Expected > 0 {
		value = int(math.Round(float64(s.OnTime) / float64(s.Expected) * 100))
	}
	value -= reports.Pending * PendingReportPenalty
	value -= reports.Resolved * resolvedPenalty
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}

	rating := rate(value, s, reports)
	return Score{
		Value:    value,
		Rating:   rating,
		Text:     text(rating),
		OnTime:   s.OnTime,
		Expected: s.Expected,
		Overdue:  s.Overdue,
		Pending:  s.Pending,
	}
}

func noHistory(s compliance.Summary, reports models.ReportCounts) bool {
	return s.Expected == 0 && reports.Pending == 0 && reports.Resolved == 0
}

func spotless(s compliance.Summary, reports models.ReportCounts) bool {
	return s.Overdue == 0 && reports.Pending == 0 && reports.Resolved == 0
}

func userRating(value int, s compliance.Summary, reports models.ReportCounts) Rating {
	switch {
	case noHistory(s, reports):
		return RatingNew
	case value >= 90 || spotless(s, reports):
		return RatingExcellent
	case value >= 75:
		return RatingGood
	case value >= 50:
		return RatingModerate
	default:
		return RatingPoor
	}
}

func groupRating(value int, s compliance.Summary, reports models.ReportCounts) Rating {
	switch {
	case noHistory(s, reports):
		return RatingNew
	case value >= 90 || spotless(s, reports):
		return RatingExcellent
	case value >= 75:
		return RatingMostlyHealthy
	case value >= 50:
		return RatingModerate
	default:
		return RatingUnhealthy
	}
}

func userText(r Rating) string {
	switch r {
	case RatingNew:
		return "No payment history yet."
	case RatingExcellent:
		return "Pays on time, every time."
	case RatingGood:
		return "Reliable contributor with occasional delays."
	case RatingModerate:
		return "Often late; follow up before relying on them."
	default:
		return "Frequently misses contributions."
	}
}

func groupText(r Rating) string {
	switch r {
	case RatingNew:
		return "This group has no contribution history yet."
	case RatingExcellent:
		return "Members contribute on time."
	case RatingMostlyHealthy:
		return "Most contributions arrive on time."
	case RatingModerate:
		return "A noticeable share of contributions is late."
	default:
		return "Contributions are routinely missed in this group."
	}
}
