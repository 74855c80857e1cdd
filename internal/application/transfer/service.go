package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-wallet-api/internal/application/risk"
	"github.com/go-wallet-api/internal/domain"
	"github.com/go-wallet-api/internal/pkg/id"
)

// maxCommitAttempts bounds the optimistic-concurrency retry loop. Every retry
// re-reads both accounts and re-runs all gates against fresh state.
const maxCommitAttempts = 3

const notifyTimeout = 5 * time.Second

type Service interface {
	Send(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error)
	History(ctx context.Context, accountID string, limit int) ([]domain.Transfer, error)
}

type accountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByWalletID(ctx context.Context, walletID string) (*domain.Account, error)
}

type ledgerStore interface {
	CountRecentBySender(ctx context.Context, senderID string, since time.Time) (int, error)
	ListByAccount(ctx context.Context, accountID string, limit int32) ([]domain.Transfer, error)
}

type ledgerWriter interface {
	Commit(ctx context.Context, sender, receiver *domain.Account, t *domain.Transfer) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	accounts accountStore
	ledger   ledgerStore
	writer   ledgerWriter
	sms      smsSender
}

type ServiceDeps struct {
	AccountRepo  accountStore
	TransferRepo ledgerStore
	LedgerWriter ledgerWriter
	SMSSender    smsSender
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts: deps.AccountRepo,
		ledger:   deps.TransferRepo,
		writer:   deps.LedgerWriter,
		sms:      deps.SMSSender,
	}
}

// Send runs the transfer pipeline: validate, gate, score, then commit both
// balance mutations and the ledger entry as one atomic unit. A version
// conflict on either account restarts the whole attempt against fresh reads.
func (s *service) Send(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", domain.ErrBadRequest)
	}
	var lastErr error
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		t, err := s.attempt(ctx, req)
		if errors.Is(err, domain.ErrConflict) {
			lastErr = err
			continue
		}
		return t, err
	}
	return nil, lastErr
}

func (s *service) attempt(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error) {
	sender, err := s.accounts.Get(ctx, req.SenderID)
	if err != nil {
		return nil, fmt.Errorf("sender not found: %w", domain.ErrNotFound)
	}
	if sender.IsFrozen {
		return nil, fmt.Errorf("your wallet is frozen, contact admin: %w", domain.ErrForbidden)
	}

	// First transfer of a new calendar day resets the spending window before
	// the limit is checked.
	now := time.Now().UTC()
	if !sameDay(sender.LastResetDate.UTC(), now) {
		sender.DailyUsage = 0
		sender.LastResetDate = now
	}
	if sender.DailyUsage+req.Amount > sender.DailyLimit {
		return nil, fmt.Errorf("daily transfer limit exceeded: %w", domain.ErrLimitExceeded)
	}

	receiver, err := s.resolveReceiver(ctx, req.ReceiverIdentifier)
	if err != nil {
		return nil, err
	}
	if receiver.AccountID == sender.AccountID {
		return nil, fmt.Errorf("cannot transfer to your own wallet: %w", domain.ErrBadRequest)
	}
	if sender.Balance < req.Amount {
		return nil, fmt.Errorf("insufficient funds: %w", domain.ErrInsufficientFunds)
	}

	recent, err := s.ledger.CountRecentBySender(ctx, sender.AccountID, now.Add(-risk.FrequencyWindow))
	if err != nil {
		return nil, fmt.Errorf("count recent transfers: %w", err)
	}
	score, flagged := risk.Score(req.Amount, recent)
	if flagged {
		slog.Warn("high risk transfer detected",
			"sender_id", sender.AccountID, "amount", req.Amount, "risk_score", score)
	}

	sender.Balance -= req.Amount
	sender.DailyUsage += req.Amount
	receiver.Balance += req.Amount

	t := &domain.Transfer{
		TransferID:  id.New(),
		SenderID:    sender.AccountID,
		ReceiverID:  receiver.AccountID,
		Amount:      req.Amount,
		Currency:    sender.Currency,
		Status:      domain.TransferCompleted,
		Description: req.Description,
		RiskScore:   score,
		IsFlagged:   flagged,
		CreatedAt:   now,
	}
	if err := s.writer.Commit(ctx, sender, receiver, t); err != nil {
		return nil, err
	}

	s.notifyParties(sender, receiver, t)
	return t, nil
}

func (s *service) History(ctx context.Context, accountID string, limit int) ([]domain.Transfer, error) {
	if limit < 1 {
		limit = 50
	}
	return s.ledger.ListByAccount(ctx, accountID, int32(limit))
}

// resolveReceiver accepts either an email address or an external wallet
// identifier, matching how senders address each other.
func (s *service) resolveReceiver(ctx context.Context, identifier string) (*domain.Account, error) {
	if a, err := s.accounts.GetByEmail(ctx, identifier); err == nil {
		return a, nil
	}
	a, err := s.accounts.GetByWalletID(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("receiver not found: %w", domain.ErrNotFound)
	}
	return a, nil
}

// notifyParties dispatches SMS notifications after the commit. Delivery is
// best-effort: failures are logged and never surfaced to the transfer.
func (s *service) notifyParties(sender, receiver *domain.Account, t *domain.Transfer) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if sender.Phone != nil {
			msg := fmt.Sprintf("Digital Wallet: %d %s has been sent from your account. If this was not you, contact support immediately.", t.Amount, t.Currency)
			if err := s.sms.SendSMS(ctx, *sender.Phone, msg); err != nil {
				slog.Warn("transfer SMS failed", "account_id", sender.AccountID, "err", err)
			}
		}
		if receiver.Phone != nil {
			msg := fmt.Sprintf("Digital Wallet: you have received %d %s in your account.", t.Amount, t.Currency)
			if err := s.sms.SendSMS(ctx, *receiver.Phone, msg); err != nil {
				slog.Warn("transfer SMS failed", "account_id", receiver.AccountID, "err", err)
			}
		}
	}()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
