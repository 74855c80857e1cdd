package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/go-wallet-api/internal/domain"
)

// maxSaveAttempts bounds the retry loop around the versioned attempts-counter
// write, so two concurrent bad verifications cannot both read attempts=2 and
// miss the freeze threshold.
const maxSaveAttempts = 3

// ChallengeResult reports the outcome of an OTP request. Code is only
// populated when the sender is simulated, so development callers can complete
// the flow without a real phone.
type ChallengeResult struct {
	SMSSent bool
	Code    string
}

type Service interface {
	Request(ctx context.Context, email string) (*ChallengeResult, error)
	Verify(ctx context.Context, email, code string) error
}

type accountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	SaveVersioned(ctx context.Context, a *domain.Account) error
}

type challengeStore interface {
	Put(ctx context.Context, c *domain.OTPChallenge) error
	LatestUnexpired(ctx context.Context, phone string, now time.Time) (*domain.OTPChallenge, error)
	Delete(ctx context.Context, phone, issuedAt string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	accounts    accountStore
	challenges  challengeStore
	sms         smsSender
	ttl         time.Duration
	maxAttempts int
	echoCode    bool
}

type ServiceDeps struct {
	AccountRepo   accountStore
	ChallengeRepo challengeStore
	SMSSender     smsSender
	TTL           time.Duration
	MaxAttempts   int
	EchoCode      bool // simulate mode: return the code to the caller
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts:    deps.AccountRepo,
		challenges:  deps.ChallengeRepo,
		sms:         deps.SMSSender,
		ttl:         deps.TTL,
		maxAttempts: deps.MaxAttempts,
		echoCode:    deps.EchoCode,
	}
}

// Request issues a fresh 6-digit challenge for the account's phone and hands
// it to the SMS sender. Delivery failure degrades to a logged fallback; the
// challenge stays valid either way.
func (s *service) Request(ctx context.Context, email string) (*ChallengeResult, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	if account.Phone == nil {
		return nil, fmt.Errorf("no phone number on account: %w", domain.ErrNotFound)
	}

	code, err := newCode()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	challenge := &domain.OTPChallenge{
		Phone:     *account.Phone,
		IssuedAt:  now.Format(domain.TimeSortLayout),
		Email:     account.Email,
		Code:      code,
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	if err := s.challenges.Put(ctx, challenge); err != nil {
		return nil, err
	}

	result := &ChallengeResult{SMSSent: true}
	msg := fmt.Sprintf("Your Digital Wallet verification code is: %s. Valid for %d minutes. Do not share this code with anyone.", code, int(s.ttl.Minutes()))
	if err := s.sms.SendSMS(ctx, *account.Phone, msg); err != nil {
		slog.Warn("OTP SMS failed, challenge still active", "account_id", account.AccountID, "err", err)
		result.SMSSent = false
	}
	if s.echoCode {
		result.Code = code
	}
	return result, nil
}

// Verify checks the submitted code against the most recently issued unexpired
// challenge for the account's phone. Each miss increments the consecutive
// failure counter; the third consecutive miss freezes the account. A match
// resets the counter and consumes the challenge.
func (s *service) Verify(ctx context.Context, email, code string) error {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		account, err := s.accounts.GetByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("account not found: %w", domain.ErrNotFound)
		}
		if account.IsFrozen {
			return fmt.Errorf("account is frozen, contact admin: %w", domain.ErrForbidden)
		}
		if account.Phone == nil {
			return fmt.Errorf("no phone number on account: %w", domain.ErrNotFound)
		}

		challenge, err := s.challenges.LatestUnexpired(ctx, *account.Phone, time.Now().UTC())
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			// A storage fault is not a wrong code. Counting it toward the
			// lockout would freeze accounts during an outage.
			return fmt.Errorf("load challenge: %w", err)
		}
		matched := err == nil && challenge.Code == code

		if !matched {
			account.OTPAttempts++
			frozen := account.OTPAttempts >= s.maxAttempts
			if frozen {
				account.IsFrozen = true
			}
			if err := s.accounts.SaveVersioned(ctx, account); err != nil {
				if errors.Is(err, domain.ErrConflict) {
					continue
				}
				return err
			}
			if frozen {
				return fmt.Errorf("account frozen due to multiple failed OTP attempts: %w", domain.ErrForbidden)
			}
			return &domain.InvalidCodeError{AttemptsRemaining: s.maxAttempts - account.OTPAttempts}
		}

		if account.OTPAttempts != 0 {
			account.OTPAttempts = 0
			if err := s.accounts.SaveVersioned(ctx, account); err != nil {
				if errors.Is(err, domain.ErrConflict) {
					continue
				}
				return err
			}
		}
		if err := s.challenges.Delete(ctx, challenge.Phone, challenge.IssuedAt); err != nil {
			slog.Warn("failed to delete consumed OTP challenge", "phone", challenge.Phone, "err", err)
		}
		return nil
	}
	return fmt.Errorf("account changed concurrently: %w", domain.ErrConflict)
}

// newCode draws a uniform 6-digit code, rendered with leading zeros.
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
