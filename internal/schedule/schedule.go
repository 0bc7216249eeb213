// Package schedule computes obligation due dates and periods.
//
// All functions are pure: the reference time is always an explicit parameter,
// never time.Now(). Dates are compared at day granularity in UTC; a due date is
// overdue only once the reference date is strictly past it, so the due day
// itself counts as expected but not overdue.
package schedule

import (
	"fmt"
	"time"

	"github.com/potluckhq/potluck/internal/fault"
	"github.com/potluckhq/potluck/internal/models"
)

// GeneralPeriodKey is the single implicit period of a general group.
const GeneralPeriodKey = "once"

// Period is one obligation period of a group.
type Period struct {
	// Key identifies the period: "2006-01" (monthly), "2006" (annual),
	// "<userID>:<year>" (birthday), or "once" (general).
	Key string
	// Start is the first day of the period.
	Start time.Time
	// Due is the day the contribution is due, normalized to midnight UTC.
	Due time.Time
}

// DateOf truncates t to midnight UTC.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate builds a date with the day clamped to the month's last valid day,
// so day 31 in February becomes Feb 28 (29 in leap years).
func ClampedDate(year int, month time.Month, day int) time.Time {
	if max := DaysInMonth(year, month); day > max {
		day = max
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// IsOverdue reports whether due is strictly past as of asOf, at day
// granularity. The due day itself is not overdue.
func IsOverdue(due, asOf time.Time) bool {
	return DateOf(asOf).After(DateOf(due))
}

// DaysOverdue returns how many full days asOf is past due, or 0.
func DaysOverdue(due, asOf time.Time) int {
	d := int(DateOf(asOf).Sub(DateOf(due)).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// DaysUntil returns how many full days remain until due, or 0 if passed.
func DaysUntil(due, asOf time.Time) int {
	d := int(DateOf(due).Sub(DateOf(asOf)).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// DueDate returns the due date of the group's current obligation period as of
// asOf. For birthday groups, birthday is the birthday person's date of birth.
func DueDate(g *models.Group, birthday, asOf time.Time) (time.Time, error) {
	ref := DateOf(asOf)
	switch g.Type {
	case models.GroupBirthday:
		bd := DateOf(birthday)
		return ClampedDate(ref.Year(), bd.Month(), bd.Day()), nil
	case models.GroupSubscription:
		switch g.Frequency {
		case models.FrequencyMonthly:
			return ClampedDate(ref.Year(), ref.Month(), g.DeadlineDay), nil
		case models.FrequencyAnnual:
			return ClampedDate(ref.Year(), g.DeadlineMonth, g.DeadlineDay), nil
		}
		return time.Time{}, fault.Validation("unknown frequency %q", g.Frequency)
	case models.GroupGeneral:
		if g.Deadline.IsZero() {
			return time.Time{}, fault.Validation("general group has no deadline")
		}
		return DateOf(g.Deadline), nil
	}
	return time.Time{}, fault.Validation("unknown group type %q", g.Type)
}

// NextDueDate returns the upcoming due date as of asOf, rolling into the next
// month, year, or birthday when the current period's date has already passed.
// General deadlines never roll.
func NextDueDate(g *models.Group, birthday, asOf time.Time) (time.Time, error) {
	due, err := DueDate(g, birthday, asOf)
	if err != nil {
		return time.Time{}, err
	}
	if !IsOverdue(due, asOf) {
		return due, nil
	}
	ref := DateOf(asOf)
	switch g.Type {
	case models.GroupBirthday:
		bd := DateOf(birthday)
		return ClampedDate(ref.Year()+1, bd.Month(), bd.Day()), nil
	case models.GroupSubscription:
		if g.Frequency == models.FrequencyMonthly {
			year, month := ref.Year(), ref.Month()+1
			if month > time.December {
				year, month = year+1, time.January
			}
			return ClampedDate(year, month, g.DeadlineDay), nil
		}
		return ClampedDate(ref.Year()+1, g.DeadlineMonth, g.DeadlineDay), nil
	default:
		return due, nil
	}
}

// PeriodKeyAt returns the key of the group's current period as of asOf.
// birthdayUserID and birthday are only consulted for birthday groups.
func PeriodKeyAt(g *models.Group, birthdayUserID string, birthday, asOf time.Time) (string, error) {
	ref := DateOf(asOf)
	switch g.Type {
	case models.GroupBirthday:
		return BirthdayPeriodKey(birthdayUserID, ref.Year()), nil
	case models.GroupSubscription:
		if g.Frequency == models.FrequencyMonthly {
			return ref.Format("2006-01"), nil
		}
		return ref.Format("2006"), nil
	case models.GroupGeneral:
		return GeneralPeriodKey, nil
	}
	return "", fault.Validation("unknown group type %q", g.Type)
}

// BirthdayPeriodKey builds the period key for a member's birthday in a year.
func BirthdayPeriodKey(userID string, year int) string {
	return fmt.Sprintf("%s:%d", userID, year)
}

// Periods enumerates the subscription or general periods of a group from
// `from` through asOf, inclusive of the period containing asOf even when its
// due date is still in the future. Birthday groups use BirthdayPeriods.
func Periods(g *models.Group, from, asOf time.Time) []Period {
	start, end := DateOf(from), DateOf(asOf)
	if end.Before(start) {
		return nil
	}
	switch g.Type {
	case models.GroupGeneral:
		return []Period{{
			Key:   GeneralPeriodKey,
			Start: start,
			Due:   DateOf(g.Deadline),
		}}
	case models.GroupSubscription:
		var periods []Period
		if g.Frequency == models.FrequencyMonthly {
			for y, m := start.Year(), start.Month(); ; {
				first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
				if first.After(end) {
					break
				}
				periods = append(periods, Period{
					Key:   first.Format("2006-01"),
					Start: first,
					Due:   ClampedDate(y, m, g.DeadlineDay),
				})
				m++
				if m > time.December {
					y, m = y+1, time.January
				}
			}
			return periods
		}
		for y := start.Year(); y <= end.Year(); y++ {
			periods = append(periods, Period{
				Key:   fmt.Sprintf("%d", y),
				Start: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
				Due:   ClampedDate(y, g.DeadlineMonth, g.DeadlineDay),
			})
		}
		return periods
	}
	return nil
}

// BirthdayPeriods enumerates one period per year for a member's birthday, from
// `from` through asOf.
func BirthdayPeriods(userID string, birthday, from, asOf time.Time) []Period {
	start, end := DateOf(from), DateOf(asOf)
	if end.Before(start) {
		return nil
	}
	bd := DateOf(birthday)
	var periods []Period
	for y := start.Year(); y <= end.Year(); y++ {
		periods = append(periods, Period{
			Key:   BirthdayPeriodKey(userID, y),
			Start: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
			Due:   ClampedDate(y, bd.Month(), bd.Day()),
		})
	}
	return periods
}
