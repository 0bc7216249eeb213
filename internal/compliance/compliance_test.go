package compliance

import (
	"testing"
	"time"

	"github.com/potluckhq/potluck/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func member(userID string, role models.Role, joined time.Time) *models.Membership {
	return &models.Membership{
		GroupID:  "g1",
		UserID:   userID,
		Role:     role,
		Status:   models.MemberActive,
		JoinedAt: joined,
	}
}

func monthlyGroup(day int, created time.Time) *models.Group {
	return &models.Group{
		ID:          "g1",
		Type:        models.GroupSubscription,
		Frequency:   models.FrequencyMonthly,
		DeadlineDay: day,
		CreatedAt:   created,
	}
}

func findResult(t *testing.T, results []Result, contributor, periodKey string) Result {
	t.Helper()
	for _, r := range results {
		if r.ContributorID == contributor && r.PeriodKey == periodKey {
			return r
		}
	}
	t.Fatalf("no result for %s/%s", contributor, periodKey)
	return Result{}
}

func TestEvaluateClassification(t *testing.T) {
	created := date(2026, time.January, 1)
	g := monthlyGroup(5, created)
	members := []*models.Membership{
		member("admin", models.RoleAdmin, created),
		member("alice", models.RoleMember, created),
	}
	asOf := date(2026, time.January, 10)

	tests := []struct {
		name         string
		contribution *models.Contribution
		want         Status
		wantDays     int
	}{
		{
			name:     "no record past due is overdue",
			want:     StatusOverdue,
			wantDays: 5,
		},
		{
			name: "confirmed on the due date is on time",
			contribution: &models.Contribution{
				Status:           models.ContributionConfirmed,
				ContributionDate: date(2026, time.January, 5),
			},
			want: StatusOnTime,
		},
		{
			name: "confirmed late is overdue",
			contribution: &models.Contribution{
				Status:           models.ContributionConfirmed,
				ContributionDate: date(2026, time.January, 8),
			},
			want:     StatusOverdue,
			wantDays: 5,
		},
		{
			name: "paid past due is overdue",
			contribution: &models.Contribution{
				Status:           models.ContributionPaid,
				ContributionDate: date(2026, time.January, 9),
			},
			want:     StatusOverdue,
			wantDays: 5,
		},
		{
			name: "rejected claim past due is overdue",
			contribution: &models.Contribution{
				Status:           models.ContributionNotReceived,
				ContributionDate: date(2026, time.January, 3),
			},
			want:     StatusOverdue,
			wantDays: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var contributions []*models.Contribution
			if tt.contribution != nil {
				c := *tt.contribution
				c.GroupID = "g1"
				c.ContributorID = "alice"
				c.PeriodKey = "2026-01"
				contributions = append(contributions, &c)
			}

			results := Evaluate(g, members, nil, contributions, asOf)
			r := findResult(t, results, "alice", "2026-01")
			if r.Status != tt.want {
				t.Errorf("status = %q, want %q", r.Status, tt.want)
			}
			if r.DaysOverdue != tt.wantDays {
				t.Errorf("days overdue = %d, want %d", r.DaysOverdue, tt.wantDays)
			}
		})
	}
}

func TestEvaluateBeforeDueDate(t *testing.T) {
	created := date(2026, time.January, 1)
	g := monthlyGroup(15, created)
	members := []*models.Membership{
		member("admin", models.RoleAdmin, created),
		member("alice", models.RoleMember, created),
	}

	t.Run("paid before due is pending", func(t *testing.T) {
		contributions := []*models.Contribution{{
			GroupID: "g1", ContributorID: "alice", PeriodKey: "2026-01",
			Status:           models.ContributionPaid,
			ContributionDate: date(2026, time.January, 3),
		}}
		results := Evaluate(g, members, nil, contributions, date(2026, time.January, 10))
		if r := findResult(t, results, "alice", "2026-01"); r.Status != StatusPending {
			t.Errorf("status = %q, want pending", r.Status)
		}
	})

	t.Run("no record before due is not yet due", func(t *testing.T) {
		results := Evaluate(g, members, nil, nil, date(2026, time.January, 10))
		if r := findResult(t, results, "alice", "2026-01"); r.Status != StatusNotYetDue {
			t.Errorf("status = %q, want not_yet_due", r.Status)
		}
	})

	t.Run("due day itself is not overdue", func(t *testing.T) {
		results := Evaluate(g, members, nil, nil, date(2026, time.January, 15))
		if r := findResult(t, results, "alice", "2026-01"); r.Status != StatusNotYetDue {
			t.Errorf("status on due day = %q, want not_yet_due", r.Status)
		}
	})
}

func TestJoinDateEligibility(t *testing.T) {
	created := date(2025, time.November, 1)
	g := monthlyGroup(5, created)
	members := []*models.Membership{
		member("admin", models.RoleAdmin, created),
		// Joined after the December due date: liable from January onward.
		member("late", models.RoleMember, date(2025, time.December, 20)),
	}

	results := Evaluate(g, members, nil, nil, date(2026, time.January, 10))

	for _, r := range results {
		if r.ContributorID != "late" {
			continue
		}
		if r.PeriodKey == "2025-11" || r.PeriodKey == "2025-12" {
			t.Errorf("late joiner should not owe period %s", r.PeriodKey)
		}
	}
	// The admin owes all three periods.
	var adminPeriods int
	for _, r := range results {
		if r.ContributorID == "admin" {
			adminPeriods++
		}
	}
	if adminPeriods != 3 {
		t.Errorf("admin has %d periods, want 3", adminPeriods)
	}
	// Joining exactly on the due day keeps the member liable.
	onDay := member("onday", models.RoleMember, time.Date(2026, time.January, 5, 18, 30, 0, 0, time.UTC))
	results = Evaluate(g, append(members, onDay), nil, nil, date(2026, time.January, 10))
	found := false
	for _, r := range results {
		if r.ContributorID == "onday" && r.PeriodKey == "2026-01" {
			found = true
		}
	}
	if !found {
		t.Error("member joining on the due day should be liable for that period")
	}
}

func TestBirthdayObligations(t *testing.T) {
	created := date(2026, time.January, 1)
	g := &models.Group{ID: "g1", Type: models.GroupBirthday, CreatedAt: created}
	members := []*models.Membership{
		member("alice", models.RoleAdmin, created),
		member("bob", models.RoleMember, created),
		member("carol", models.RoleMember, created),
	}
	birthdays := map[string]time.Time{
		"alice": date(1990, time.March, 10),
		"bob":   date(1991, time.September, 2),
		"carol": date(1992, time.June, 24),
	}

	obligations := Obligations(g, members, birthdays, date(2026, time.December, 1))

	// Three birthdays, two contributors each.
	if len(obligations) != 6 {
		t.Fatalf("got %d obligations, want 6", len(obligations))
	}
	for _, ob := range obligations {
		if ob.ContributorID == ob.ReceiverID {
			t.Errorf("member %s owes their own birthday", ob.ContributorID)
		}
	}
}

func TestSummarize(t *testing.T) {
	created := date(2025, time.November, 1)
	g := monthlyGroup(5, created)
	members := []*models.Membership{
		member("admin", models.RoleAdmin, created),
		member("alice", models.RoleMember, created),
	}
	// As of Jan 10: periods Nov, Dec, Jan are expected for both members.
	asOf := date(2026, time.January, 10)

	contributions := []*models.Contribution{
		{GroupID: "g1", ContributorID: "alice", PeriodKey: "2025-11",
			Status: models.ContributionConfirmed, ContributionDate: date(2025, time.November, 4)},
		{GroupID: "g1", ContributorID: "alice", PeriodKey: "2025-12",
			Status: models.ContributionConfirmed, ContributionDate: date(2025, time.December, 9)}, // late
		{GroupID: "g1", ContributorID: "admin", PeriodKey: "2025-11",
			Status: models.ContributionConfirmed, ContributionDate: date(2025, time.November, 5)},
	}

	results := Evaluate(g, members, nil, contributions, asOf)
	s := Summarize(results, asOf)

	if s.Expected != 6 {
		t.Errorf("expected = %d, want 6", s.Expected)
	}
	if s.OnTime != 2 {
		t.Errorf("on time = %d, want 2", s.OnTime)
	}
	// Overdue excludes confirmed rows even when confirmed late:
	// admin Dec + admin Jan + alice Jan = 3.
	if s.Overdue != 3 {
		t.Errorf("overdue = %d, want 3", s.Overdue)
	}
}
