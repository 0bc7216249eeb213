package service

import (
	"context"
	"time"

	"github.com/potluckhq/potluck/internal/compliance"
	"github.com/potluckhq/potluck/internal/models"
	"github.com/potluckhq/potluck/internal/scoring"
	"github.com/potluckhq/potluck/internal/storage"
)

// InsightService derives compliance views and trust scores. Everything here is
// recomputed from stored rows on each call; there are no cached counters to
// invalidate.
type InsightService struct {
	store  storage.Store
	groups *GroupService
}

// NewInsightService creates an insight service. The group service is used to
// apply the report auto-close side effect on health reads.
func NewInsightService(store storage.Store, groups *GroupService) *InsightService {
	return &InsightService{store: store, groups: groups}
}

// Compliance classifies every obligation of the group as of asOf.
func (s *InsightService) Compliance(ctx context.Context, groupID string, asOf time.Time) ([]compliance.Result, error) {
	_, results, err := s.evaluateGroup(ctx, groupID, asOf)
	return results, err
}

// GroupHealth scores the group's aggregate compliance and report standing.
// Reading health re-checks the report threshold, so a group past it is closed
// even if nobody files another report.
func (s *InsightService) GroupHealth(ctx context.Context, groupID string, asOf time.Time) (scoring.Score, error) {
	if err := s.groups.autoCloseIfReported(ctx, groupID); err != nil {
		return scoring.Score{}, err
	}
	_, results, err := s.evaluateGroup(ctx, groupID, asOf)
	if err != nil {
		return scoring.Score{}, err
	}
	reports, err := s.store.CountReportsForGroup(ctx, groupID)
	if err != nil {
		return scoring.Score{}, err
	}
	return scoring.GroupHealth(compliance.Summarize(results, asOf), reports), nil
}

// UserReliability scores the user's on-time history across every group they
// belong to.
func (s *InsightService) UserReliability(ctx context.Context, userID string, asOf time.Time) (scoring.Score, error) {
	var summary compliance.Summary
	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return scoring.Score{}, err
	}
	for _, g := range groups {
		_, results, err := s.evaluateGroup(ctx, g.ID, asOf)
		if err != nil {
			return scoring.Score{}, err
		}
		own := make([]compliance.Result, 0, len(results))
		for _, r := range results {
			if r.ContributorID == userID {
				own = append(own, r)
			}
		}
		gs := compliance.Summarize(own, asOf)
		summary.Expected += gs.Expected
		summary.OnTime += gs.OnTime
		summary.Overdue += gs.Overdue
		summary.Pending += gs.Pending
	}

	reports, err := s.store.CountReportsForUser(ctx, userID)
	if err != nil {
		return scoring.Score{}, err
	}
	return scoring.UserReliability(summary, reports), nil
}

// OverdueItem is one overdue obligation with its group attached, for
// cross-group listings.
type OverdueItem struct {
	GroupID   string
	GroupName string
	compliance.Result
}

// OverdueForGroup lists the group's overdue obligations as of asOf.
func (s *InsightService) OverdueForGroup(ctx context.Context, groupID string, asOf time.Time) ([]OverdueItem, error) {
	group, results, err := s.evaluateGroup(ctx, groupID, asOf)
	if err != nil {
		return nil, err
	}
	items := make([]OverdueItem, 0)
	for _, r := range results {
		if r.Status == compliance.StatusOverdue {
			items = append(items, OverdueItem{GroupID: group.ID, GroupName: group.Name, Result: r})
		}
	}
	return items, nil
}

// OverdueForUser lists the user's overdue obligations across all their groups.
func (s *InsightService) OverdueForUser(ctx context.Context, userID string, asOf time.Time) ([]OverdueItem, error) {
	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]OverdueItem, 0)
	for _, g := range groups {
		_, results, err := s.evaluateGroup(ctx, g.ID, asOf)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if r.ContributorID == userID && r.Status == compliance.StatusOverdue {
				items = append(items, OverdueItem{GroupID: g.ID, GroupName: g.Name, Result: r})
			}
		}
	}
	return items, nil
}

func (s *InsightService) evaluateGroup(ctx context.Context, groupID string, asOf time.Time) (*models.Group, []compliance.Result, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	birthdays, err := s.store.MemberBirthdays(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	contributions, err := s.store.ListGroupContributions(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	return group, compliance.Evaluate(group, members, birthdays, contributions, asOf), nil
}
