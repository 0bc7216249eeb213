// Package api exposes the HTTP surface: a thin JSON layer over the services,
// with fault kinds mapped onto status codes.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/potluckhq/potluck/internal/auth"
	"github.com/potluckhq/potluck/internal/middleware"
	"github.com/potluckhq/potluck/internal/service"
)

// Server bundles the services behind the HTTP handlers.
type Server struct {
	auth          *service.AuthService
	groups        *service.GroupService
	contributions *service.ContributionService
	wallets       *service.WalletService
	insights      *service.InsightService
}

// NewServer creates the HTTP server facade.
func NewServer(
	authService *service.AuthService,
	groups *service.GroupService,
	contributions *service.ContributionService,
	wallets *service.WalletService,
	insights *service.InsightService,
) *Server {
	return &Server{
		auth:          authService,
		groups:        groups,
		contributions: contributions,
		wallets:       wallets,
		insights:      insights,
	}
}

// Router builds the route tree. Everything under /api except auth requires a
// bearer token.
func (s *Server) Router(jwtManager *auth.JWTManager) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtManager))

			r.Get("/me", s.handleCurrentUser)
			r.Get("/me/reliability", s.handleUserReliability)
			r.Get("/me/overdue", s.handleUserOverdue)

			r.Post("/groups", s.handleCreateGroup)
			r.Get("/groups", s.handleListGroups)
			r.Get("/groups/{groupID}", s.handleGetGroup)
			r.Post("/groups/{groupID}/join", s.handleJoinGroup)
			r.Post("/groups/{groupID}/leave", s.handleLeaveGroup)
			r.Post("/groups/{groupID}/close", s.handleCloseGroup)
			r.Get("/groups/{groupID}/members", s.handleListMembers)
			r.Post("/groups/{groupID}/members/{userID}/approve", s.handleApproveMember)

			r.Post("/groups/{groupID}/contributions", s.handleMarkPaid)
			r.Post("/contributions/{contributionID}/confirm", s.handleConfirm)
			r.Post("/contributions/{contributionID}/reject", s.handleReject)

			r.Get("/groups/{groupID}/compliance", s.handleGroupCompliance)
			r.Get("/groups/{groupID}/health", s.handleGroupHealth)
			r.Get("/groups/{groupID}/overdue", s.handleGroupOverdue)

			r.Get("/wallet", s.handleWalletBalance)
			r.Get("/wallet/transactions", s.handleWalletTransactions)
			r.Post("/wallet/withdraw", s.handleWithdraw)

			r.Post("/reports", s.handleReport)
		})
	})

	return r
}
