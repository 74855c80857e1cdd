package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-wallet-api/internal/domain"
)

type Service interface {
	Freeze(ctx context.Context, accountID string) error
	Unfreeze(ctx context.Context, accountID string) error
	ListTransfers(ctx context.Context, limit int, cursor string) ([]domain.Transfer, string, error)
	ListFlagged(ctx context.Context, limit int) ([]domain.Transfer, error)
	ExportFlagged(ctx context.Context) (string, error)
}

type accountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	Update(ctx context.Context, accountID string, updates map[string]interface{}) error
}

type transferStore interface {
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Transfer, string, error)
	ListFlagged(ctx context.Context, limit int32) ([]domain.Transfer, error)
}

type auditStore interface {
	PutJSON(ctx context.Context, key string, body []byte) (string, error)
}

type service struct {
	accounts  accountStore
	transfers transferStore
	audit     auditStore
}

type ServiceDeps struct {
	AccountRepo  accountStore
	TransferRepo transferStore
	AuditStore   auditStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts:  deps.AccountRepo,
		transfers: deps.TransferRepo,
		audit:     deps.AuditStore,
	}
}

// Freeze blocks the account from originating transfers. Freezing an already
// frozen account succeeds without change.
func (s *service) Freeze(ctx context.Context, accountID string) error {
	if _, err := s.accounts.Get(ctx, accountID); err != nil {
		return err
	}
	return s.accounts.Update(ctx, accountID, map[string]interface{}{"is_frozen": true})
}

// Unfreeze lifts the freeze and clears the OTP failure counter so the holder
// gets a fresh set of verification attempts.
func (s *service) Unfreeze(ctx context.Context, accountID string) error {
	if _, err := s.accounts.Get(ctx, accountID); err != nil {
		return err
	}
	return s.accounts.Update(ctx, accountID, map[string]interface{}{
		"is_frozen":    false,
		"otp_attempts": 0,
	})
}

func (s *service) ListTransfers(ctx context.Context, limit int, cursor string) ([]domain.Transfer, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.transfers.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) ListFlagged(ctx context.Context, limit int) ([]domain.Transfer, error) {
	if limit < 1 {
		limit = 50
	}
	return s.transfers.ListFlagged(ctx, int32(limit))
}

// ExportFlagged snapshots the current flagged transfer list to the audit
// bucket and returns the object URL.
func (s *service) ExportFlagged(ctx context.Context) (string, error) {
	flagged, err := s.transfers.ListFlagged(ctx, 1000)
	if err != nil {
		return "", err
	}
	body, err := json.MarshalIndent(flagged, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal flagged transfers: %w", err)
	}
	key := fmt.Sprintf("flagged/%s.json", time.Now().UTC().Format("2006-01-02T15-04-05"))
	return s.audit.PutJSON(ctx, key, body)
}
