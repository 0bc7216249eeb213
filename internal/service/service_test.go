package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/potluckhq/potluck/internal/models"
	"github.com/potluckhq/potluck/internal/storage"
	"github.com/potluckhq/potluck/internal/storage/sqlite"
)

// fixture wires every service against one throwaway sqlite store.
type fixture struct {
	store         storage.Store
	auth          *AuthService
	groups        *GroupService
	contributions *ContributionService
	wallets       *WalletService
	insights      *InsightService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	groups := NewGroupService(store, nil, nil)
	return &fixture{
		store:         store,
		groups:        groups,
		contributions: NewContributionService(store, nil, nil),
		wallets:       NewWalletService(store, nil, nil),
		insights:      NewInsightService(store, groups),
	}
}

func (f *fixture) seedUser(t *testing.T, name string, birthday time.Time) *models.User {
	t.Helper()
	u := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Birthday:     birthday,
	}
	if err := f.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return u
}

// seedMonthlyGroup creates a monthly subscription group (500 cents, due day 5)
// owned by admin, with every other user an approved active member.
func (f *fixture) seedMonthlyGroup(t *testing.T, admin *models.User, createdAt time.Time, members ...*models.User) *models.Group {
	t.Helper()
	ctx := context.Background()
	g, err := f.groups.Create(ctx, CreateGroupInput{
		Name:        "Coffee fund",
		Type:        models.GroupSubscription,
		Currency:    "EUR",
		AmountCents: 500,
		Frequency:   models.FrequencyMonthly,
		DeadlineDay: 5,
	}, admin.ID, createdAt)
	if err != nil {
		t.Fatalf("Create group failed: %v", err)
	}
	for _, m := range members {
		if _, err := f.groups.Join(ctx, g.ID, m.ID, createdAt); err != nil {
			t.Fatalf("Join failed: %v", err)
		}
		if err := f.groups.ApproveMember(ctx, g.ID, admin.ID, m.ID); err != nil {
			t.Fatalf("ApproveMember failed: %v", err)
		}
	}
	return g
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
