package models

import (
	"time"

	"github.com/potluckhq/potluck/internal/fault"
)

// GroupType tags a group with its obligation kind. The type decides how due
// dates and period keys are derived; everything else about a contribution's
// lifecycle is shared.
type GroupType string

const (
	// GroupBirthday collects for each member's birthday; the due date is the
	// member's birth month/day each year and the birthday person receives.
	GroupBirthday GroupType = "birthday"
	// GroupSubscription collects on a recurring monthly or annual deadline.
	GroupSubscription GroupType = "subscription"
	// GroupGeneral collects once, toward a fixed deadline.
	GroupGeneral GroupType = "general"
)

// Valid reports whether t is a known group type.
func (t GroupType) Valid() bool {
	switch t {
	case GroupBirthday, GroupSubscription, GroupGeneral:
		return true
	}
	return false
}

// GroupStatus is the lifecycle state of a group.
type GroupStatus string

const (
	GroupActive GroupStatus = "active"
	// GroupClosed groups accept no further contributions. A group is closed by
	// its admin or automatically once it accumulates enough pending reports.
	GroupClosed GroupStatus = "closed"
)

// Frequency is the recurrence of a subscription group.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyAnnual  Frequency = "annual"
)

// Group is a pool of members with a shared recurring obligation.
type Group struct {
	ID       string
	Name     string
	Type     GroupType
	Currency string

	// AmountCents is the expected contribution per member per period, in cents.
	AmountCents int64

	Status GroupStatus

	// Frequency, DeadlineDay and DeadlineMonth apply to subscription groups.
	// DeadlineMonth is set iff Frequency is annual.
	Frequency     Frequency
	DeadlineDay   int
	DeadlineMonth time.Month

	// Deadline applies to general groups: the single fixed due date.
	Deadline time.Time

	CreatedBy string
	CreatedAt time.Time
}

// NewGroup builds a validated group owned by createdBy.
func NewGroup(name string, gt GroupType, currency string, amountCents int64, createdBy string, now time.Time) (*Group, error) {
	if name == "" {
		return nil, fault.Validation("group name is required")
	}
	if !gt.Valid() {
		return nil, fault.Validation("unknown group type %q", gt)
	}
	if currency == "" {
		return nil, fault.Validation("currency is required")
	}
	if amountCents <= 0 {
		return nil, fault.Validation("contribution amount must be positive")
	}
	return &Group{
		Name:        name,
		Type:        gt,
		Currency:    currency,
		AmountCents: amountCents,
		Status:      GroupActive,
		CreatedBy:   createdBy,
		CreatedAt:   now.UTC(),
	}, nil
}

// ValidateSchedule checks the per-type recurrence parameters.
func (g *Group) ValidateSchedule() error {
	switch g.Type {
	case GroupBirthday:
		return nil
	case GroupSubscription:
		if g.DeadlineDay < 1 || g.DeadlineDay > 31 {
			return fault.Validation("deadline day must be between 1 and 31")
		}
		switch g.Frequency {
		case FrequencyMonthly:
			if g.DeadlineMonth != 0 {
				return fault.Validation("deadline month is only valid for annual subscriptions")
			}
		case FrequencyAnnual:
			if g.DeadlineMonth < time.January || g.DeadlineMonth > time.December {
				return fault.Validation("annual subscriptions require a deadline month")
			}
		default:
			return fault.Validation("unknown frequency %q", g.Frequency)
		}
		return nil
	case GroupGeneral:
		if g.Deadline.IsZero() {
			return fault.Validation("general groups require a deadline")
		}
		return nil
	default:
		return fault.Validation("unknown group type %q", g.Type)
	}
}

// Open reports whether the group still accepts contributions.
func (g *Group) Open() bool { return g.Status == GroupActive }
