package service

import (
	"context"
	"testing"
	"time"

	"github.com/potluckhq/potluck/internal/fault"
	"github.com/potluckhq/potluck/internal/models"
)

func TestGroupCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedUser(t, "admin", date(1985, time.March, 1))
	now := date(2026, time.January, 1)

	tests := []struct {
		name  string
		input CreateGroupInput
	}{
		{
			name: "monthly subscription without deadline day",
			input: CreateGroupInput{
				Name: "fund", Type: models.GroupSubscription, Currency: "EUR",
				AmountCents: 500, Frequency: models.FrequencyMonthly,
			},
		},
		{
			name: "annual subscription without deadline month",
			input: CreateGroupInput{
				Name: "fund", Type: models.GroupSubscription, Currency: "EUR",
				AmountCents: 500, Frequency: models.FrequencyAnnual, DeadlineDay: 15,
			},
		},
		{
			name: "monthly subscription with stray deadline month",
			input: CreateGroupInput{
				Name: "fund", Type: models.GroupSubscription, Currency: "EUR",
				AmountCents: 500, Frequency: models.FrequencyMonthly,
				DeadlineDay: 5, DeadlineMonth: time.June,
			},
		},
		{
			name: "general group without deadline",
			input: CreateGroupInput{
				Name: "trip", Type: models.GroupGeneral, Currency: "EUR", AmountCents: 500,
			},
		},
		{
			name: "non-positive amount",
			input: CreateGroupInput{
				Name: "fund", Type: models.GroupBirthday, Currency: "EUR", AmountCents: 0,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.groups.Create(ctx, tt.input, admin.ID, now)
			if !fault.IsKind(err, fault.KindValidation) {
				t.Errorf("error kind = %v, want validation", fault.KindOf(err))
			}
		})
	}
}

func TestMembershipFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedUser(t, "admin", date(1985, time.March, 1))
	alice := f.seedUser(t, "alice", date(1990, time.June, 15))
	bob := f.seedUser(t, "bob", date(1991, time.July, 1))
	now := date(2026, time.January, 1)
	g := f.seedMonthlyGroup(t, admin, now)

	t.Run("join starts pending", func(t *testing.T) {
		m, err := f.groups.Join(ctx, g.ID, alice.ID, now)
		if err != nil {
			t.Fatalf("Join failed: %v", err)
		}
		if m.Status != models.MemberPending || m.Role != models.RoleMember {
			t.Errorf("membership = %s/%s, want member/pending", m.Role, m.Status)
		}
	})

	t.Run("joining twice conflicts", func(t *testing.T) {
		_, err := f.groups.Join(ctx, g.ID, alice.ID, now)
		if !fault.IsKind(err, fault.KindConflict) {
			t.Errorf("error kind = %v, want conflict", fault.KindOf(err))
		}
	})

	t.Run("only admins approve", func(t *testing.T) {
		if _, err := f.groups.Join(ctx, g.ID, bob.ID, now); err != nil {
			t.Fatalf("Join failed: %v", err)
		}
		err := f.groups.ApproveMember(ctx, g.ID, alice.ID, bob.ID)
		if !fault.IsKind(err, fault.KindForbidden) {
			t.Errorf("error kind = %v, want forbidden", fault.KindOf(err))
		}
	})

	t.Run("approval activates the membership", func(t *testing.T) {
		if err := f.groups.ApproveMember(ctx, g.ID, admin.ID, alice.ID); err != nil {
			t.Fatalf("ApproveMember failed: %v", err)
		}
		members, err := f.groups.ListMembers(ctx, g.ID, alice.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		var found bool
		for _, m := range members {
			if m.UserID == alice.ID {
				found = m.Status == models.MemberActive
			}
		}
		if !found {
			t.Error("expected alice to be an active member")
		}
	})

	t.Run("approving an active member is an invalid state", func(t *testing.T) {
		err := f.groups.ApproveMember(ctx, g.ID, admin.ID, alice.ID)
		if !fault.IsKind(err, fault.KindInvalidState) {
			t.Errorf("error kind = %v, want invalid_state", fault.KindOf(err))
		}
	})

	t.Run("listing members requires membership", func(t *testing.T) {
		outsider := f.seedUser(t, "mallory", date(1992, time.April, 2))
		_, err := f.groups.ListMembers(ctx, g.ID, outsider.ID)
		if !fault.IsKind(err, fault.KindForbidden) {
			t.Errorf("error kind = %v, want forbidden", fault.KindOf(err))
		}
	})

	t.Run("the admin cannot leave", func(t *testing.T) {
		err := f.groups.Leave(ctx, g.ID, admin.ID)
		if !fault.IsKind(err, fault.KindConflict) {
			t.Errorf("error kind = %v, want conflict", fault.KindOf(err))
		}
	})

	t.Run("members can leave", func(t *testing.T) {
		if err := f.groups.Leave(ctx, g.ID, alice.ID); err != nil {
			t.Fatalf("Leave failed: %v", err)
		}
		m, _ := f.store.GetMember(ctx, g.ID, alice.ID)
		if m.Status != models.MemberInactive {
			t.Errorf("status = %s, want inactive", m.Status)
		}
	})
}

func TestReportAutoClosesGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedUser(t, "admin", date(1985, time.March, 1))
	reporter := f.seedUser(t, "reporter", date(1990, time.June, 15))
	now := date(2026, time.January, 10)
	g := f.seedMonthlyGroup(t, admin, date(2026, time.January, 1))

	t.Run("reports below the threshold leave the group open", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if _, err := f.groups.Report(ctx, reporter.ID, "", g.ID, "suspicious activity", now); err != nil {
				t.Fatalf("Report failed: %v", err)
			}
		}
		got, _ := f.groups.Get(ctx, g.ID)
		if !got.Open() {
			t.Fatal("group closed below the report threshold")
		}
	})

	t.Run("the third pending report closes the group", func(t *testing.T) {
		if _, err := f.groups.Report(ctx, reporter.ID, "", g.ID, "suspicious activity", now); err != nil {
			t.Fatalf("Report failed: %v", err)
		}
		got, _ := f.groups.Get(ctx, g.ID)
		if got.Status != models.GroupClosed {
			t.Errorf("status = %s, want closed", got.Status)
		}
	})

	t.Run("reporting both a user and a group fails validation", func(t *testing.T) {
		_, err := f.groups.Report(ctx, reporter.ID, admin.ID, g.ID, "both", now)
		if !fault.IsKind(err, fault.KindValidation) {
			t.Errorf("error kind = %v, want validation", fault.KindOf(err))
		}
	})
}
