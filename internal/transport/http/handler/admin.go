package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-wallet-api/internal/application/admin"
)

// AdminHandler handles account-lock administration and ledger review.
type AdminHandler struct {
	svc admin.Service
}

func NewAdminHandler(svc admin.Service) *AdminHandler { return &AdminHandler{svc: svc} }

func (h *AdminHandler) Freeze(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Freeze(r.Context(), chi.URLParam(r, "accountId")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "account frozen"})
}

func (h *AdminHandler) Unfreeze(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Unfreeze(r.Context(), chi.URLParam(r, "accountId")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "account unfrozen"})
}

func (h *AdminHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	transfers, next, err := h.svc.ListTransfers(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PaginatedTransfersEnvelope{Data: transfers, NextCursor: next})
}

func (h *AdminHandler) ListFlagged(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	transfers, err := h.svc.ListFlagged(r.Context(), limit)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transfers)
}

func (h *AdminHandler) ExportFlagged(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.ExportFlagged(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "flagged transfers exported to " + url})
}
