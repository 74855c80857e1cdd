package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrLimitExceeded     = errors.New("daily transfer limit exceeded")
	ErrInvalidCode       = errors.New("invalid code")
)

// InvalidCodeError reports a failed OTP verification together with the number
// of attempts left before the account is frozen. It unwraps to ErrInvalidCode.
type InvalidCodeError struct {
	AttemptsRemaining int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid OTP, %d attempts remaining", e.AttemptsRemaining)
}

func (e *InvalidCodeError) Unwrap() error { return ErrInvalidCode }
