package models

import "time"

// Role is a member's role within a group.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCoAdmin Role = "co-admin"
	RoleMember  Role = "member"
)

// MemberStatus is a member's standing within a group.
type MemberStatus string

const (
	MemberPending  MemberStatus = "pending"
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

// Membership links a user to a group.
//
// A member is only liable for obligations whose due date falls on or after
// JoinedAt, compared at day granularity.
type Membership struct {
	GroupID  string
	UserID   string
	Role     Role
	Status   MemberStatus
	JoinedAt time.Time
}

// Active reports whether the member is in good standing.
func (m *Membership) Active() bool { return m.Status == MemberActive }

// CanAdminister reports whether the member may confirm, reject, and manage
// the group.
func (m *Membership) CanAdminister() bool {
	return m.Active() && (m.Role == RoleAdmin || m.Role == RoleCoAdmin)
}

// LiableFor reports whether the member is liable for an obligation due on the
// given date. Join timestamps are truncated to midnight so joining at any time
// on the due day still makes the member liable.
func (m *Membership) LiableFor(due time.Time) bool {
	joined := m.JoinedAt.UTC()
	joinedDay := time.Date(joined.Year(), joined.Month(), joined.Day(), 0, 0, 0, 0, time.UTC)
	return !joinedDay.After(due)
}
