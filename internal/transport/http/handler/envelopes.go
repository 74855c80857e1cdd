package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-wallet-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps login/register responses.
type AuthEnvelope struct {
	Bearer  string          `json:"Bearer,omitempty"`
	Account *domain.Account `json:"account,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// OTPRequestEnvelope reports the outcome of an OTP issuance. OTP is populated
// only in simulate mode.
type OTPRequestEnvelope struct {
	Message string `json:"message"`
	SMSSent bool   `json:"smsSent"`
	OTP     string `json:"otp,omitempty"`
}

// OTPVerifyEnvelope reports a failed verification with remaining attempts or
// the resulting freeze.
type OTPVerifyEnvelope struct {
	Message           string `json:"message"`
	AttemptsRemaining *int   `json:"attemptsRemaining,omitempty"`
	IsFrozen          bool   `json:"isFrozen,omitempty"`
}

// PaginatedAccountsEnvelope wraps paginated account list responses.
type PaginatedAccountsEnvelope struct {
	Data       []domain.Account `json:"data"`
	NextCursor string           `json:"next_cursor,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// PaginatedTransfersEnvelope wraps paginated ledger list responses.
type PaginatedTransfersEnvelope struct {
	Data       []domain.Transfer `json:"data"`
	NextCursor string            `json:"next_cursor,omitempty"`
	Error      string            `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors to HTTP status codes.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrBadRequest),
		errors.Is(err, domain.ErrLimitExceeded),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInvalidCode):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
