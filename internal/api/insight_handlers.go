package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/potluckhq/potluck/internal/compliance"
	"github.com/potluckhq/potluck/internal/fault"
	"github.com/potluckhq/potluck/internal/middleware"
	"github.com/potluckhq/potluck/internal/service"
)

// asOf reads the optional as_of=YYYY-MM-DD query parameter, defaulting to now.
// Letting callers pin the reference date makes every derived view
// reproducible.
func asOf(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fault.Validation("as_of must be YYYY-MM-DD")
	}
	return t, nil
}

type overdueItemDTO struct {
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	complianceResultDTO
}

func toOverdueDTOs(items []service.OverdueItem) []overdueItemDTO {
	dtos := make([]overdueItemDTO, 0, len(items))
	for _, it := range items {
		dto := overdueItemDTO{
			GroupID:   it.GroupID,
			GroupName: it.GroupName,
			complianceResultDTO: complianceResultDTO{
				ContributorID: it.ContributorID,
				ReceiverID:    it.ReceiverID,
				PeriodKey:     it.PeriodKey,
				Due:           it.Due,
				Status:        string(it.Status),
				DaysOverdue:   it.DaysOverdue,
			},
		}
		if it.Contribution != nil {
			c := toContributionDTO(it.Contribution)
			dto.Contribution = &c
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

func toComplianceDTOs(results []compliance.Result) []complianceResultDTO {
	dtos := make([]complianceResultDTO, 0, len(results))
	for _, res := range results {
		dto := complianceResultDTO{
			ContributorID: res.ContributorID,
			ReceiverID:    res.ReceiverID,
			PeriodKey:     res.PeriodKey,
			Due:           res.Due,
			Status:        string(res.Status),
			DaysOverdue:   res.DaysOverdue,
		}
		if res.Contribution != nil {
			c := toContributionDTO(res.Contribution)
			dto.Contribution = &c
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

func (s *Server) handleGroupCompliance(w http.ResponseWriter, r *http.Request) {
	ref, err := asOf(r)
	if err != nil {
		writeError(w, err)
		return
	}
	results, err := s.insights.Compliance(r.Context(), chi.URLParam(r, "groupID"), ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toComplianceDTOs(results))
}

func (s *Server) handleGroupHealth(w http.ResponseWriter, r *http.Request) {
	ref, err := asOf(r)
	if err != nil {
		writeError(w, err)
		return
	}
	score, err := s.insights.GroupHealth(r.Context(), chi.URLParam(r, "groupID"), ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleGroupOverdue(w http.ResponseWriter, r *http.Request) {
	ref, err := asOf(r)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := s.insights.OverdueForGroup(r.Context(), chi.URLParam(r, "groupID"), ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOverdueDTOs(items))
}

func (s *Server) handleUserReliability(w http.ResponseWriter, r *http.Request) {
	ref, err := asOf(r)
	if err != nil {
		writeError(w, err)
		return
	}
	score, err := s.insights.UserReliability(r.Context(), middleware.GetUserID(r.Context()), ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleUserOverdue(w http.ResponseWriter, r *http.Request) {
	ref, err := asOf(r)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := s.insights.OverdueForUser(r.Context(), middleware.GetUserID(r.Context()), ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOverdueDTOs(items))
}
