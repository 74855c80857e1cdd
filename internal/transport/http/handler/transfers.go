package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-wallet-api/internal/application/transfer"
	"github.com/go-wallet-api/internal/domain"
	"github.com/go-wallet-api/internal/pkg/validate"
	"github.com/go-wallet-api/internal/transport/http/middleware"
)

// TransferHandler handles the money-transfer endpoints.
type TransferHandler struct {
	svc transfer.Service
}

func NewTransferHandler(svc transfer.Service) *TransferHandler { return &TransferHandler{svc: svc} }

func (h *TransferHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Only the wallet holder may originate a transfer from their account.
	if claims.AccountID != req.SenderID && claims.Role != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "cannot send from another wallet")
		return
	}
	t, err := h.svc.Send(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TransferHandler) History(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accountID := chi.URLParam(r, "accountId")
	if claims.AccountID != accountID && claims.Role != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "cannot view another account's history")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	transfers, err := h.svc.History(r.Context(), accountID, limit)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transfers)
}
