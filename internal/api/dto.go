package api

import (
	"time"

	"github.com/potluckhq/potluck/internal/models"
)

// Wire representations of the domain models. Times are RFC 3339; zero times
// are omitted.

type userDTO struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Birthday:  timePtr(u.Birthday),
		CreatedAt: u.CreatedAt,
	}
}

type groupDTO struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	Currency      string     `json:"currency"`
	AmountCents   int64      `json:"amount_cents"`
	Status        string     `json:"status"`
	Frequency     string     `json:"frequency,omitempty"`
	DeadlineDay   int        `json:"deadline_day,omitempty"`
	DeadlineMonth int        `json:"deadline_month,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toGroupDTO(g *models.Group) groupDTO {
	return groupDTO{
		ID:            g.ID,
		Name:          g.Name,
		Type:          string(g.Type),
		Currency:      g.Currency,
		AmountCents:   g.AmountCents,
		Status:        string(g.Status),
		Frequency:     string(g.Frequency),
		DeadlineDay:   g.DeadlineDay,
		DeadlineMonth: int(g.DeadlineMonth),
		Deadline:      timePtr(g.Deadline),
		CreatedBy:     g.CreatedBy,
		CreatedAt:     g.CreatedAt,
	}
}

type membershipDTO struct {
	GroupID  string    `json:"group_id"`
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	Status   string    `json:"status"`
	JoinedAt time.Time `json:"joined_at"`
}

func toMembershipDTO(m *models.Membership) membershipDTO {
	return membershipDTO{
		GroupID:  m.GroupID,
		UserID:   m.UserID,
		Role:     string(m.Role),
		Status:   string(m.Status),
		JoinedAt: m.JoinedAt,
	}
}

type contributionDTO struct {
	ID               string     `json:"id"`
	GroupID          string     `json:"group_id"`
	ContributorID    string     `json:"contributor_id"`
	ReceiverID       string     `json:"receiver_id"`
	PeriodKey        string     `json:"period_key"`
	AmountCents      int64      `json:"amount_cents"`
	Status           string     `json:"status"`
	ContributionDate *time.Time `json:"contribution_date,omitempty"`
	Note             string     `json:"note,omitempty"`
	TransactionID    string     `json:"transaction_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toContributionDTO(c *models.Contribution) contributionDTO {
	return contributionDTO{
		ID:               c.ID,
		GroupID:          c.GroupID,
		ContributorID:    c.ContributorID,
		ReceiverID:       c.ReceiverID,
		PeriodKey:        c.PeriodKey,
		AmountCents:      c.AmountCents,
		Status:           string(c.Status),
		ContributionDate: timePtr(c.ContributionDate),
		Note:             c.Note,
		TransactionID:    c.TransactionID,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

type transactionDTO struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	GroupID     string    `json:"group_id,omitempty"`
	Type        string    `json:"type"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTransactionDTO(t *models.Transaction) transactionDTO {
	return transactionDTO{
		ID:          t.ID,
		UserID:      t.UserID,
		GroupID:     t.GroupID,
		Type:        string(t.Type),
		AmountCents: t.AmountCents,
		Status:      string(t.Status),
		Description: t.Description,
		Reference:   t.Reference,
		CreatedAt:   t.CreatedAt,
	}
}

type walletDTO struct {
	UserID       string `json:"user_id"`
	Currency     string `json:"currency"`
	BalanceCents int64  `json:"balance_cents"`
}

type reportDTO struct {
	ID              string    `json:"id"`
	ReporterID      string    `json:"reporter_id"`
	ReportedUserID  string    `json:"reported_user_id,omitempty"`
	ReportedGroupID string    `json:"reported_group_id,omitempty"`
	Reason          string    `json:"reason"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func toReportDTO(r *models.Report) reportDTO {
	return reportDTO{
		ID:              r.ID,
		ReporterID:      r.ReporterID,
		ReportedUserID:  r.ReportedUserID,
		ReportedGroupID: r.ReportedGroupID,
		Reason:          r.Reason,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt,
	}
}

type complianceResultDTO struct {
	ContributorID string           `json:"contributor_id"`
	ReceiverID    string           `json:"receiver_id"`
	PeriodKey     string           `json:"period_key"`
	Due           time.Time        `json:"due"`
	Status        string           `json:"status"`
	DaysOverdue   int              `json:"days_overdue,omitempty"`
	Contribution  *contributionDTO `json:"contribution,omitempty"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
