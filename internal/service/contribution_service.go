// Package service orchestrates the domain: each service validates a request
// against the current state, applies the mutation through the store's atomic
// operations, and emits events and metrics after commit.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/potluckhq/potluck/internal/compliance"
	"github.com/potluckhq/potluck/internal/eventlog"
	"github.com/potluckhq/potluck/internal/fault"
	"github.com/potluckhq/potluck/internal/metrics"
	"github.com/potluckhq/potluck/internal/models"
	"github.com/potluckhq/potluck/internal/schedule"
	"github.com/potluckhq/potluck/internal/storage"
)

// ContributionService drives the contribution lifecycle:
// markPaid -> confirm / reject, with the ledger kept in step.
type ContributionService struct {
	store   storage.Store
	events  *eventlog.Worker
	metrics *metrics.Metrics
}

// NewContributionService creates a contribution service. events and m may be
// nil when event dispatch or metrics are not wired.
func NewContributionService(store storage.Store, events *eventlog.Worker, m *metrics.Metrics) *ContributionService {
	return &ContributionService{store: store, events: events, metrics: m}
}

func (s *ContributionService) logEvent(e eventlog.Event) {
	if s.events != nil {
		s.events.Log(e)
	}
}

// MarkPaid records that contributorID has paid their obligation for the
// group's current period, lazily creating the contribution row.
//
// receiverID names the birthday person and is required for birthday groups;
// other group types derive the receiver (the admin) and ignore it.
// amountCents zero means the group's configured amount. When the contributor
// is also the period's receiver the claim is confirmed and settled
// immediately, since there is nobody else to confirm it.
func (s *ContributionService) MarkPaid(ctx context.Context, groupID, contributorID, receiverID string, amountCents int64, note string, asOf time.Time) (*models.Contribution, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.Open() {
		return nil, fault.Conflict("group %s is closed", groupID)
	}

	member, err := s.store.GetMember(ctx, groupID, contributorID)
	if err != nil {
		if fault.IsKind(err, fault.KindNotFound) {
			return nil, fault.Forbidden("user %s is not a member of group %s", contributorID, groupID)
		}
		return nil, err
	}
	if !member.Active() {
		return nil, fault.Forbidden("membership of user %s is not active", contributorID)
	}

	if amountCents < 0 {
		return nil, fault.Validation("contribution amount must be positive")
	}
	if amountCents == 0 {
		amountCents = group.AmountCents
	}

	receiverID, periodKey, err := s.resolveObligation(ctx, group, contributorID, receiverID, asOf)
	if err != nil {
		return nil, err
	}

	c, err := s.store.GetContributionForPeriod(ctx, groupID, contributorID, periodKey)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &models.Contribution{
			GroupID:       groupID,
			ContributorID: contributorID,
			ReceiverID:    receiverID,
			PeriodKey:     periodKey,
			Status:        models.ContributionNotPaid,
		}
	}
	if !c.Status.CanTransition(models.ContributionPaid) {
		return nil, fault.InvalidState("contribution for period %s is %s", periodKey, c.Status)
	}

	c.AmountCents = amountCents
	c.Note = note
	c.ContributionDate = asOf.UTC()

	selfPay := contributorID == receiverID
	action := storage.LedgerRecord
	if selfPay {
		c.Status = models.ContributionConfirmed
		action = storage.LedgerSettle
	} else {
		c.Status = models.ContributionPaid
	}

	if err := s.store.SaveContribution(ctx, c, action); err != nil {
		return nil, err
	}

	slog.Info("contribution marked paid",
		"group_id", groupID,
		"contributor_id", contributorID,
		"period_key", periodKey,
		"amount_cents", amountCents,
		"self_settled", selfPay,
	)
	s.metrics.ObserveMarked(string(group.Type))
	s.logEvent(eventlog.NewEvent(
		eventlog.WithType(eventlog.TypeContributionMarked),
		eventlog.WithData(map[string]string{
			"contribution_id": c.ID,
			"group_id":        groupID,
			"contributor_id":  contributorID,
			"period_key":      periodKey,
		}),
	))
	if selfPay {
		s.metrics.ObserveConfirmed()
		s.metrics.ObserveSettled(c.AmountCents)
		s.logEvent(eventlog.NewEvent(
			eventlog.WithType(eventlog.TypeContributionConfirmed),
			eventlog.WithData(map[string]string{"contribution_id": c.ID, "group_id": groupID}),
		))
	}
	return c, nil
}

// Confirm acknowledges a paid claim as the receiver, settling the amount onto
// the receiver's wallet in the same transaction.
func (s *ContributionService) Confirm(ctx context.Context, contributionID, byUserID string) (*models.Contribution, error) {
	c, err := s.store.GetContribution(ctx, contributionID)
	if err != nil {
		return nil, err
	}
	if c.ReceiverID != byUserID {
		return nil, fault.Forbidden("only the receiver can confirm a contribution")
	}
	if !c.Status.CanTransition(models.ContributionConfirmed) {
		return nil, fault.InvalidState("cannot confirm a %s contribution", c.Status)
	}

	c.Status = models.ContributionConfirmed
	if err := s.store.SaveContribution(ctx, c, storage.LedgerSettle); err != nil {
		return nil, err
	}

	slog.Info("contribution confirmed",
		"contribution_id", c.ID,
		"group_id", c.GroupID,
		"receiver_id", byUserID,
		"amount_cents", c.AmountCents,
	)
	s.metrics.ObserveConfirmed()
	s.metrics.ObserveSettled(c.AmountCents)
	s.logEvent(eventlog.NewEvent(
		eventlog.WithType(eventlog.TypeContributionConfirmed),
		eventlog.WithData(map[string]string{"contribution_id": c.ID, "group_id": c.GroupID}),
	))
	return c, nil
}

// Reject disputes a paid claim as the receiver. The contribution moves to
// not_received and its linked ledger pair's status is updated in place; the
// contributor may mark the period paid again.
func (s *ContributionService) Reject(ctx context.Context, contributionID, byUserID string) (*models.Contribution, error) {
	c, err := s.store.GetContribution(ctx, contributionID)
	if err != nil {
		return nil, err
	}
	if c.ReceiverID != byUserID {
		return nil, fault.Forbidden("only the receiver can reject a contribution")
	}
	if !c.Status.CanTransition(models.ContributionNotReceived) {
		return nil, fault.InvalidState("cannot reject a %s contribution", c.Status)
	}

	c.Status = models.ContributionNotReceived
	if err := s.store.SaveContribution(ctx, c, storage.LedgerNone); err != nil {
		return nil, err
	}

	slog.Info("contribution rejected",
		"contribution_id", c.ID,
		"group_id", c.GroupID,
		"receiver_id", byUserID,
	)
	s.metrics.ObserveRejected()
	s.logEvent(eventlog.NewEvent(
		eventlog.WithType(eventlog.TypeContributionRejected),
		eventlog.WithData(map[string]string{"contribution_id": c.ID, "group_id": c.GroupID}),
	))
	return c, nil
}

// resolveObligation determines who receives the contributor's current-period
// payment and the period key identifying it.
func (s *ContributionService) resolveObligation(ctx context.Context, group *models.Group, contributorID, receiverID string, asOf time.Time) (string, string, error) {
	var birthday time.Time

	if group.Type == models.GroupBirthday {
		if receiverID == "" {
			return "", "", fault.Validation("birthday groups require the birthday person as receiver")
		}
		if receiverID == contributorID {
			return "", "", fault.Validation("members do not contribute to their own birthday")
		}
		receiver, err := s.store.GetMember(ctx, group.ID, receiverID)
		if err != nil {
			if fault.IsKind(err, fault.KindNotFound) {
				return "", "", fault.Validation("receiver %s is not a member of group %s", receiverID, group.ID)
			}
			return "", "", err
		}
		if !receiver.Active() {
			return "", "", fault.Validation("receiver %s is not an active member", receiverID)
		}
		birthdays, err := s.store.MemberBirthdays(ctx, group.ID)
		if err != nil {
			return "", "", err
		}
		var ok bool
		if birthday, ok = birthdays[receiverID]; !ok || birthday.IsZero() {
			return "", "", fault.Validation("receiver %s has no birthday on file", receiverID)
		}
	} else {
		members, err := s.store.ListMembers(ctx, group.ID)
		if err != nil {
			return "", "", err
		}
		receiverID = compliance.AdminOf(members)
		if receiverID == "" {
			return "", "", fault.InvalidState("group %s has no admin to receive contributions", group.ID)
		}
	}

	periodKey, err := schedule.PeriodKeyAt(group, receiverID, birthday, asOf)
	if err != nil {
		return "", "", err
	}
	return receiverID, periodKey, nil
}
