// Package compliance classifies every expected obligation of a group at a
// point in time.
//
// Classification is recomputed from stored contribution rows on each call.
// There are deliberately no cached overdue counters anywhere: a counter can
// drift, a re-derivation cannot.
package compliance

import (
	"time"

	"github.com/potluckhq/potluck/internal/models"
	"github.com/potluckhq/potluck/internal/schedule"
)

// Status classifies one (obligation, contributor) pair.
type Status string

const (
	// StatusOnTime: confirmed, and the contribution was marked paid on or
	// before the due date.
	StatusOnTime Status = "on_time"
	// StatusPending: marked paid, due date not yet past, awaiting confirmation.
	StatusPending Status = "pending"
	// StatusOverdue: the due date passed without an on-time confirmation.
	// Covers missing rows, rejected claims, unconfirmed claims past the due
	// date, and late confirmations.
	StatusOverdue Status = "overdue"
	// StatusNotYetDue: the period has started but its due date is still ahead
	// and nothing has been paid.
	StatusNotYetDue Status = "not_yet_due"
)

// Obligation is one expected contribution: a contributor owing a receiver for
// a period.
type Obligation struct {
	ContributorID string
	ReceiverID    string
	PeriodKey     string
	Due           time.Time
}

// Result is the classification of one obligation as of a reference date.
type Result struct {
	Obligation
	Status      Status
	DaysOverdue int
	// Contribution is the stored row, nil when none exists yet.
	Contribution *models.Contribution
}

// Expected reports whether the obligation counts toward the score denominator:
// its due date is on or before the reference date.
func (r Result) Expected(asOf time.Time) bool {
	return !schedule.DateOf(r.Due).After(schedule.DateOf(asOf))
}

// Obligations expands a group's periods against its membership.
//
// For birthday groups every active member with a known birthday is a receiver
// once a year, owed by every other member; for subscription and general groups
// the admin receives from every active member, the admin included (the admin's
// own share is the self-payment path). Members are only liable for due dates
// on or after their join date.
func Obligations(g *models.Group, members []*models.Membership, birthdays map[string]time.Time, asOf time.Time) []Obligation {
	var obligations []Obligation

	if g.Type == models.GroupBirthday {
		for _, receiver := range members {
			if !receiver.Active() {
				continue
			}
			birthday, ok := birthdays[receiver.UserID]
			if !ok || birthday.IsZero() {
				continue
			}
			periods := schedule.BirthdayPeriods(receiver.UserID, birthday, g.CreatedAt, asOf)
			for _, p := range periods {
				for _, m := range members {
					if m.UserID == receiver.UserID || !m.Active() || !m.LiableFor(p.Due) {
						continue
					}
					obligations = append(obligations, Obligation{
						ContributorID: m.UserID,
						ReceiverID:    receiver.UserID,
						PeriodKey:     p.Key,
						Due:           p.Due,
					})
				}
			}
		}
		return obligations
	}

	receiverID := AdminOf(members)
	for _, p := range schedule.Periods(g, g.CreatedAt, asOf) {
		for _, m := range members {
			if !m.Active() || !m.LiableFor(p.Due) {
				continue
			}
			obligations = append(obligations, Obligation{
				ContributorID: m.UserID,
				ReceiverID:    receiverID,
				PeriodKey:     p.Key,
				Due:           p.Due,
			})
		}
	}
	return obligations
}

// AdminOf returns the user id of the group's admin member, or "".
func AdminOf(members []*models.Membership) string {
	for _, m := range members {
		if m.Role == models.RoleAdmin {
			return m.UserID
		}
	}
	return ""
}

// Evaluate classifies every obligation of the group as of asOf, joining the
// stored contribution rows by (contributor, period key).
func Evaluate(g *models.Group, members []*models.Membership, birthdays map[string]time.Time, contributions []*models.Contribution, asOf time.Time) []Result {
	byKey := make(map[string]*models.Contribution, len(contributions))
	for _, c := range contributions {
		byKey[c.ContributorID+"|"+c.PeriodKey] = c
	}

	obligations := Obligations(g, members, birthdays, asOf)
	results := make([]Result, 0, len(obligations))
	for _, ob := range obligations {
		c := byKey[ob.ContributorID+"|"+ob.PeriodKey]
		results = append(results, Result{
			Obligation:   ob,
			Status:       classify(c, ob.Due, asOf),
			DaysOverdue:  overdueDays(c, ob.Due, asOf),
			Contribution: c,
		})
	}
	return results
}

func classify(c *models.Contribution, due, asOf time.Time) Status {
	duePassed := schedule.IsOverdue(due, asOf)
	if c == nil {
		if duePassed {
			return StatusOverdue
		}
		return StatusNotYetDue
	}
	switch c.Status {
	case models.ContributionConfirmed:
		if schedule.IsOverdue(due, c.ContributionDate) {
			return StatusOverdue
		}
		return StatusOnTime
	case models.ContributionPaid:
		if duePassed {
			return StatusOverdue
		}
		return StatusPending
	default: // not_paid, not_received
		if duePassed {
			return StatusOverdue
		}
		return StatusNotYetDue
	}
}

func overdueDays(c *models.Contribution, due, asOf time.Time) int {
	if classify(c, due, asOf) != StatusOverdue {
		return 0
	}
	return schedule.DaysOverdue(due, asOf)
}

// Summary aggregates results into the counts the scorer consumes.
type Summary struct {
	// Expected counts obligations whose due date is on or before the reference
	// date, regardless of status. This is the one score denominator used
	// everywhere.
	Expected int
	// OnTime counts confirmed-on-time obligations.
	OnTime int
	// Overdue counts expected obligations that are neither on time nor
	// confirmed. Late confirmations show as overdue in results but are already
	// settled, so they reduce the score without counting as open debt.
	Overdue int
	// Pending counts paid-awaiting-confirmation obligations not yet due.
	Pending int
}

// Summarize folds classification results into counts as of asOf.
func Summarize(results []Result, asOf time.Time) Summary {
	var s Summary
	ref := schedule.DateOf(asOf)
	for _, r := range results {
		expected := !r.Due.After(ref)
		if expected {
			s.Expected++
		}
		switch r.Status {
		case StatusOnTime:
			s.OnTime++
		case StatusPending:
			s.Pending++
		}
		if expected && r.Status != StatusOnTime &&
			(r.Contribution == nil || r.Contribution.Status != models.ContributionConfirmed) {
			s.Overdue++
		}
	}
	return s
}
