package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/potluckhq/potluck/internal/fault"
	"github.com/potluckhq/potluck/internal/middleware"
	"github.com/potluckhq/potluck/internal/models"
	"github.com/potluckhq/potluck/internal/service"
)

type createGroupRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Currency    string `json:"currency"`
	AmountCents int64  `json:"amount_cents"`

	Frequency     string `json:"frequency,omitempty"`
	DeadlineDay   int    `json:"deadline_day,omitempty"`
	DeadlineMonth int    `json:"deadline_month,omitempty"`
	// Deadline is "2006-01-02", for general groups.
	Deadline string `json:"deadline,omitempty"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var deadline time.Time
	if req.Deadline != "" {
		var err error
		if deadline, err = time.Parse("2006-01-02", req.Deadline); err != nil {
			writeError(w, fault.Validation("deadline must be YYYY-MM-DD"))
			return
		}
	}

	group, err := s.groups.Create(r.Context(), service.CreateGroupInput{
		Name:          req.Name,
		Type:          models.GroupType(req.Type),
		Currency:      req.Currency,
		AmountCents:   req.AmountCents,
		Frequency:     models.Frequency(req.Frequency),
		DeadlineDay:   req.DeadlineDay,
		DeadlineMonth: time.Month(req.DeadlineMonth),
		Deadline:      deadline,
	}, middleware.GetUserID(r.Context()), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupDTO(group))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]groupDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, toGroupDTO(g))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.Get(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupDTO(group))
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	m, err := s.groups.Join(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context()), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMembershipDTO(m))
}

func (s *Server) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.Leave(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (s *Server) handleCloseGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.Close(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.groups.ListMembers(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]membershipDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, toMembershipDTO(m))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleApproveMember(w http.ResponseWriter, r *http.Request) {
	err := s.groups.ApproveMember(r.Context(),
		chi.URLParam(r, "groupID"),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

type reportRequest struct {
	ReportedUserID  string `json:"reported_user_id,omitempty"`
	ReportedGroupID string `json:"reported_group_id,omitempty"`
	Reason          string `json:"reason"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	report, err := s.groups.Report(r.Context(),
		middleware.GetUserID(r.Context()),
		req.ReportedUserID, req.ReportedGroupID, req.Reason,
		time.Now(),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReportDTO(report))
}
