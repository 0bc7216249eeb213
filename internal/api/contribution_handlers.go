package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/potluckhq/potluck/internal/middleware"
)

type markPaidRequest struct {
	// ReceiverID names the birthday person; required for birthday groups.
	ReceiverID string `json:"receiver_id,omitempty"`
	// AmountCents zero means the group's configured amount.
	AmountCents int64  `json:"amount_cents,omitempty"`
	Note        string `json:"note,omitempty"`
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	var req markPaidRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	c, err := s.contributions.MarkPaid(r.Context(),
		chi.URLParam(r, "groupID"),
		middleware.GetUserID(r.Context()),
		req.ReceiverID,
		req.AmountCents,
		req.Note,
		time.Now(),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContributionDTO(c))
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	c, err := s.contributions.Confirm(r.Context(),
		chi.URLParam(r, "contributionID"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContributionDTO(c))
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	c, err := s.contributions.Reject(r.Context(),
		chi.URLParam(r, "contributionID"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContributionDTO(c))
}
