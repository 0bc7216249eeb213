package api

import (
	"net/http"
	"time"

	"github.com/potluckhq/potluck/internal/fault"
	"github.com/potluckhq/potluck/internal/middleware"
)

func (s *Server) handleWalletBalance(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		writeError(w, fault.Validation("currency query parameter is required"))
		return
	}
	wallet, err := s.wallets.Balance(r.Context(), middleware.GetUserID(r.Context()), currency)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, walletDTO{
		UserID:       wallet.UserID,
		Currency:     wallet.Currency,
		BalanceCents: wallet.BalanceCents,
	})
}

func (s *Server) handleWalletTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.wallets.Transactions(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]transactionDTO, 0, len(txns))
	for _, t := range txns {
		dtos = append(dtos, toTransactionDTO(t))
	}
	writeJSON(w, http.StatusOK, dtos)
}

type withdrawRequest struct {
	Currency    string `json:"currency"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Currency == "" {
		writeError(w, fault.Validation("currency is required"))
		return
	}

	t, err := s.wallets.Withdraw(r.Context(),
		middleware.GetUserID(r.Context()),
		req.Currency, req.AmountCents, req.Description,
		time.Now(),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(t))
}
