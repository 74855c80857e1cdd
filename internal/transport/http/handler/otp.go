package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-wallet-api/internal/application/otp"
	"github.com/go-wallet-api/internal/domain"
	"github.com/go-wallet-api/internal/pkg/validate"
)

// OTPHandler handles the transfer-authorization challenge endpoints.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler { return &OTPHandler{svc: svc} }

func (h *OTPHandler) Request(w http.ResponseWriter, r *http.Request) {
	var body domain.OTPRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.Request(r.Context(), body.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	msg := "verification code sent to your phone via SMS"
	if !result.SMSSent {
		msg = "verification code generated (SMS service unavailable)"
	}
	if result.Code != "" {
		msg = "verification code logged (simulation)"
	}
	writeJSON(w, http.StatusOK, OTPRequestEnvelope{
		Message: msg,
		SMSSent: result.SMSSent,
		OTP:     result.Code,
	})
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var body domain.OTPVerifyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.svc.Verify(r.Context(), body.Email, body.Code)
	if err == nil {
		writeJSON(w, http.StatusOK, OTPVerifyEnvelope{Message: "OTP verified"})
		return
	}
	var invalid *domain.InvalidCodeError
	if errors.As(err, &invalid) {
		writeJSON(w, http.StatusBadRequest, OTPVerifyEnvelope{
			Message:           err.Error(),
			AttemptsRemaining: &invalid.AttemptsRemaining,
		})
		return
	}
	if errors.Is(err, domain.ErrForbidden) {
		writeJSON(w, http.StatusForbidden, OTPVerifyEnvelope{Message: err.Error(), IsFrozen: true})
		return
	}
	httpError(w, err)
}
