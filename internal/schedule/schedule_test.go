package schedule

import (
	"testing"
	"time"

	"github.com/potluckhq/potluck/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthlyGroup(day int) *models.Group {
	return &models.Group{
		Type:        models.GroupSubscription,
		Frequency:   models.FrequencyMonthly,
		DeadlineDay: day,
	}
}

func annualGroup(day int, month time.Month) *models.Group {
	return &models.Group{
		Type:          models.GroupSubscription,
		Frequency:     models.FrequencyAnnual,
		DeadlineDay:   day,
		DeadlineMonth: month,
	}
}

func TestDueDate(t *testing.T) {
	tests := []struct {
		name     string
		group    *models.Group
		birthday time.Time
		asOf     time.Time
		want     time.Time
	}{
		{
			name:  "monthly plain",
			group: monthlyGroup(5),
			asOf:  date(2026, time.January, 10),
			want:  date(2026, time.January, 5),
		},
		{
			name:  "monthly day 31 clamps to Feb 28",
			group: monthlyGroup(31),
			asOf:  date(2026, time.February, 1),
			want:  date(2026, time.February, 28),
		},
		{
			name:  "monthly day 31 clamps to Feb 29 in leap year",
			group: monthlyGroup(31),
			asOf:  date(2028, time.February, 1),
			want:  date(2028, time.February, 29),
		},
		{
			name:  "annual clamps within deadline month",
			group: annualGroup(31, time.April),
			asOf:  date(2026, time.June, 1),
			want:  date(2026, time.April, 30),
		},
		{
			name:     "birthday maps onto current year",
			group:    &models.Group{Type: models.GroupBirthday},
			birthday: date(1990, time.August, 14),
			asOf:     date(2026, time.March, 1),
			want:     date(2026, time.August, 14),
		},
		{
			name:     "birthday on Feb 29 clamps in non-leap year",
			group:    &models.Group{Type: models.GroupBirthday},
			birthday: date(1992, time.February, 29),
			asOf:     date(2026, time.January, 1),
			want:     date(2026, time.February, 28),
		},
		{
			name:  "general fixed deadline",
			group: &models.Group{Type: models.GroupGeneral, Deadline: date(2026, time.May, 20)},
			asOf:  date(2026, time.January, 1),
			want:  date(2026, time.May, 20),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DueDate(tt.group, tt.birthday, tt.asOf)
			if err != nil {
				t.Fatalf("DueDate() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("DueDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name     string
		group    *models.Group
		birthday time.Time
		asOf     time.Time
		want     time.Time
	}{
		{
			name:  "monthly not yet passed stays in month",
			group: monthlyGroup(15),
			asOf:  date(2026, time.January, 10),
			want:  date(2026, time.January, 15),
		},
		{
			name:  "monthly on the due day does not roll",
			group: monthlyGroup(10),
			asOf:  date(2026, time.January, 10),
			want:  date(2026, time.January, 10),
		},
		{
			name:  "monthly passed rolls to next month",
			group: monthlyGroup(5),
			asOf:  date(2026, time.January, 10),
			want:  date(2026, time.February, 5),
		},
		{
			name:  "monthly December rolls into January",
			group: monthlyGroup(5),
			asOf:  date(2026, time.December, 20),
			want:  date(2027, time.January, 5),
		},
		{
			name:  "annual passed rolls to next year",
			group: annualGroup(1, time.March),
			asOf:  date(2026, time.June, 1),
			want:  date(2027, time.March, 1),
		},
		{
			name:     "birthday passed rolls to next year",
			group:    &models.Group{Type: models.GroupBirthday},
			birthday: date(1990, time.February, 1),
			asOf:     date(2026, time.June, 1),
			want:     date(2027, time.February, 1),
		},
		{
			name:  "general deadline never rolls",
			group: &models.Group{Type: models.GroupGeneral, Deadline: date(2026, time.January, 1)},
			asOf:  date(2026, time.June, 1),
			want:  date(2026, time.January, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDueDate(tt.group, tt.birthday, tt.asOf)
			if err != nil {
				t.Fatalf("NextDueDate() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextDueDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsOverdue(t *testing.T) {
	due := date(2026, time.January, 5)

	if IsOverdue(due, date(2026, time.January, 5)) {
		t.Error("due day itself must not be overdue")
	}
	if IsOverdue(due, time.Date(2026, time.January, 5, 23, 59, 0, 0, time.UTC)) {
		t.Error("time of day on the due day must not matter")
	}
	if !IsOverdue(due, date(2026, time.January, 6)) {
		t.Error("one day past due must be overdue")
	}
	if got := DaysOverdue(due, date(2026, time.January, 10)); got != 5 {
		t.Errorf("DaysOverdue = %d, want 5", got)
	}
	if got := DaysUntil(due, date(2026, time.January, 1)); got != 4 {
		t.Errorf("DaysUntil = %d, want 4", got)
	}
	if got := DaysUntil(due, date(2026, time.January, 10)); got != 0 {
		t.Errorf("DaysUntil past due = %d, want 0", got)
	}
}

func TestPeriods(t *testing.T) {
	t.Run("monthly enumerates every month through asOf", func(t *testing.T) {
		g := monthlyGroup(31)
		periods := Periods(g, date(2025, time.November, 12), date(2026, time.February, 3))

		wantKeys := []string{"2025-11", "2025-12", "2026-01", "2026-02"}
		if len(periods) != len(wantKeys) {
			t.Fatalf("got %d periods, want %d", len(periods), len(wantKeys))
		}
		for i, key := range wantKeys {
			if periods[i].Key != key {
				t.Errorf("period %d key = %q, want %q", i, periods[i].Key, key)
			}
		}
		// Clamping applies per month.
		if !periods[0].Due.Equal(date(2025, time.November, 30)) {
			t.Errorf("November due = %v, want Nov 30", periods[0].Due)
		}
		if !periods[3].Due.Equal(date(2026, time.February, 28)) {
			t.Errorf("February due = %v, want Feb 28", periods[3].Due)
		}
	})

	t.Run("annual enumerates one period per year", func(t *testing.T) {
		g := annualGroup(15, time.March)
		periods := Periods(g, date(2024, time.June, 1), date(2026, time.January, 1))

		if len(periods) != 3 {
			t.Fatalf("got %d periods, want 3", len(periods))
		}
		if periods[0].Key != "2024" || periods[2].Key != "2026" {
			t.Errorf("keys = %q..%q, want 2024..2026", periods[0].Key, periods[2].Key)
		}
		if !periods[1].Due.Equal(date(2025, time.March, 15)) {
			t.Errorf("2025 due = %v, want Mar 15", periods[1].Due)
		}
	})

	t.Run("general is a single period", func(t *testing.T) {
		g := &models.Group{Type: models.GroupGeneral, Deadline: date(2026, time.May, 1)}
		periods := Periods(g, date(2026, time.January, 1), date(2026, time.June, 1))

		if len(periods) != 1 {
			t.Fatalf("got %d periods, want 1", len(periods))
		}
		if periods[0].Key != GeneralPeriodKey {
			t.Errorf("key = %q, want %q", periods[0].Key, GeneralPeriodKey)
		}
	})

	t.Run("birthday periods per year", func(t *testing.T) {
		periods := BirthdayPeriods("alice", date(1990, time.July, 9), date(2025, time.January, 1), date(2026, time.December, 1))

		if len(periods) != 2 {
			t.Fatalf("got %d periods, want 2", len(periods))
		}
		if periods[0].Key != "alice:2025" || periods[1].Key != "alice:2026" {
			t.Errorf("keys = %q, %q", periods[0].Key, periods[1].Key)
		}
		if !periods[1].Due.Equal(date(2026, time.July, 9)) {
			t.Errorf("2026 due = %v, want Jul 9", periods[1].Due)
		}
	})
}
