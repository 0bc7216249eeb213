package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/potluckhq/potluck/internal/eventlog"
	"github.com/potluckhq/potluck/internal/fault"
	"github.com/potluckhq/potluck/internal/metrics"
	"github.com/potluckhq/potluck/internal/models"
	"github.com/potluckhq/potluck/internal/scoring"
	"github.com/potluckhq/potluck/internal/storage"
)

// GroupService manages groups, memberships, and moderation reports.
type GroupService struct {
	store   storage.Store
	events  *eventlog.Worker
	metrics *metrics.Metrics
}

// NewGroupService creates a group service. events and m may be nil.
func NewGroupService(store storage.Store, events *eventlog.Worker, m *metrics.Metrics) *GroupService {
	return &GroupService{store: store, events: events, metrics: m}
}

func (s *GroupService) logEvent(e eventlog.Event) {
	if s.events != nil {
		s.events.Log(e)
	}
}

// CreateGroupInput carries the parameters of a new group. The schedule fields
// apply per type: Frequency/DeadlineDay/DeadlineMonth for subscriptions,
// Deadline for general groups, none for birthday groups.
type CreateGroupInput struct {
	Name        string
	Type        models.GroupType
	Currency    string
	AmountCents int64

	Frequency     models.Frequency
	DeadlineDay   int
	DeadlineMonth time.Month
	Deadline      time.Time
}

// Create builds the group and enrolls the creator as its active admin, in one
// transaction.
func (s *GroupService) Create(ctx context.Context, in CreateGroupInput, creatorID string, now time.Time) (*models.Group, error) {
	group, err := models.NewGroup(in.Name, in.Type, in.Currency, in.AmountCents, creatorID, now)
	if err != nil {
		return nil, err
	}
	group.Frequency = in.Frequency
	group.DeadlineDay = in.DeadlineDay
	group.DeadlineMonth = in.DeadlineMonth
	group.Deadline = in.Deadline
	if err := group.ValidateSchedule(); err != nil {
		return nil, err
	}

	admin := &models.Membership{
		UserID:   creatorID,
		Role:     models.RoleAdmin,
		Status:   models.MemberActive,
		JoinedAt: now.UTC(),
	}
	if err := s.store.CreateGroup(ctx, group, admin); err != nil {
		return nil, err
	}

	slog.Info("group created", "group_id", group.ID, "type", group.Type, "created_by", creatorID)
	s.logEvent(eventlog.NewEvent(
		eventlog.WithType(eventlog.TypeGroupCreated),
		eventlog.WithData(map[string]string{"group_id": group.ID, "group_type": string(group.Type)}),
	))
	return group, nil
}

// Get returns a group by id.
func (s *GroupService) Get(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// ListForUser returns the groups the user belongs to.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.store.ListGroupsForUser(ctx, userID)
}

// Join requests membership in a group. The membership starts pending until an
// admin approves it.
func (s *GroupService) Join(ctx context.Context, groupID, userID string, now time.Time) (*models.Membership, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.Open() {
		return nil, fault.Conflict("group %s is closed", groupID)
	}

	if existing, err := s.store.GetMember(ctx, groupID, userID); err == nil && existing != nil {
		return nil, fault.Conflict("user %s already has a membership in group %s", userID, groupID)
	} else if err != nil && !fault.IsKind(err, fault.KindNotFound) {
		return nil, err
	}

	m := &models.Membership{
		GroupID:  groupID,
		UserID:   userID,
		Role:     models.RoleMember,
		Status:   models.MemberPending,
		JoinedAt: now.UTC(),
	}
	if err := s.store.AddMember(ctx, m); err != nil {
		return nil, err
	}
	slog.Info("membership requested", "group_id", groupID, "user_id", userID)
	return m, nil
}

// ApproveMember activates a pending membership. Admin only.
func (s *GroupService) ApproveMember(ctx context.Context, groupID, approverID, userID string) error {
	approver, err := s.store.GetMember(ctx, groupID, approverID)
	if err != nil {
		if fault.IsKind(err, fault.KindNotFound) {
			return fault.Forbidden("user %s is not a member of group %s", approverID, groupID)
		}
		return err
	}
	if !approver.CanAdminister() {
		return fault.Forbidden("only group admins can approve members")
	}

	member, err := s.store.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member.Status != models.MemberPending {
		return fault.InvalidState("membership of user %s is %s, not pending", userID, member.Status)
	}

	if err := s.store.SetMemberStatus(ctx, groupID, userID, models.MemberActive); err != nil {
		return err
	}
	slog.Info("membership approved", "group_id", groupID, "user_id", userID, "approved_by", approverID)
	s.logEvent(eventlog.NewEvent(
		eventlog.WithType(eventlog.TypeMemberJoined),
		eventlog.WithData(map[string]string{"group_id": groupID, "user_id": userID}),
	))
	return nil
}

// Leave deactivates the caller's membership. The admin cannot leave; they
// close the group instead.
func (s *GroupService) Leave(ctx context.Context, groupID, userID string) error {
	member, err := s.store.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member.Role == models.RoleAdmin {
		return fault.Conflict("the group admin cannot leave; close the group instead")
	}
	if member.Status == models.MemberInactive {
		return fault.InvalidState("membership of user %s is already inactive", userID)
	}
	if err := s.store.SetMemberStatus(ctx, groupID, userID, models.MemberInactive); err != nil {
		return err
	}
	slog.Info("member left group", "group_id", groupID, "user_id", userID)
	return nil
}

// ListMembers returns the group's memberships. Members only.
func (s *GroupService) ListMembers(ctx context.Context, groupID, requesterID string) ([]*models.Membership, error) {
	if _, err := s.store.GetMember(ctx, groupID, requesterID); err != nil {
		if fault.IsKind(err, fault.KindNotFound) {
			return nil, fault.Forbidden("user %s is not a member of group %s", requesterID, groupID)
		}
		return nil, err
	}
	return s.store.ListMembers(ctx, groupID)
}

// Close closes the group to further contributions. Admin only.
func (s *GroupService) Close(ctx context.Context, groupID, byUserID string) error {
	member, err := s.store.GetMember(ctx, groupID, byUserID)
	if err != nil {
		if fault.IsKind(err, fault.KindNotFound) {
			return fault.Forbidden("user %s is not a member of group %s", byUserID, groupID)
		}
		return err
	}
	if !member.CanAdminister() {
		return fault.Forbidden("only group admins can close the group")
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.Open() {
		return fault.InvalidState("group %s is already closed", groupID)
	}
	if err := s.store.SetGroupStatus(ctx, groupID, models.GroupClosed); err != nil {
		return err
	}
	slog.Info("group closed", "group_id", groupID, "closed_by", byUserID)
	return nil
}

// Report files a moderation report against a user or a group (exactly one).
// Filing against a group re-checks the auto-close threshold immediately.
func (s *GroupService) Report(ctx context.Context, reporterID, reportedUserID, reportedGroupID, reason string, now time.Time) (*models.Report, error) {
	report, err := models.NewReport(reporterID, reportedUserID, reportedGroupID, reason, now)
	if err != nil {
		return nil, err
	}

	if reportedUserID != "" {
		if _, err := s.store.GetUserByID(ctx, reportedUserID); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.store.GetGroup(ctx, reportedGroupID); err != nil {
			return nil, err
		}
	}

	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	slog.Info("report filed",
		"report_id", report.ID,
		"reporter_id", reporterID,
		"reported_user_id", reportedUserID,
		"reported_group_id", reportedGroupID,
	)
	s.logEvent(eventlog.NewEvent(
		eventlog.WithType(eventlog.TypeReportFiled),
		eventlog.WithData(map[string]string{"report_id": report.ID}),
	))

	if reportedGroupID != "" {
		if err := s.autoCloseIfReported(ctx, reportedGroupID); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// autoCloseIfReported closes the group when its pending reports have crossed
// the threshold. Shared by report filing and the health read path.
func (s *GroupService) autoCloseIfReported(ctx context.Context, groupID string) error {
	counts, err := s.store.CountReportsForGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !scoring.ShouldAutoClose(counts) {
		return nil
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.Open() {
		return nil
	}
	if err := s.store.SetGroupStatus(ctx, groupID, models.GroupClosed); err != nil {
		return err
	}
	slog.Warn("group auto-closed by report threshold",
		"group_id", groupID,
		"pending_reports", counts.Pending,
	)
	s.metrics.ObserveAutoClose()
	s.logEvent(eventlog.NewEvent(
		eventlog.WithType(eventlog.TypeGroupAutoClosed),
		eventlog.WithData(map[string]string{"group_id": groupID}),
	))
	return nil
}
