package account

import (
	"context"
	"fmt"
	"time"

	"github.com/go-wallet-api/internal/domain"
	"github.com/go-wallet-api/internal/pkg/id"
	"github.com/go-wallet-api/internal/pkg/wallet"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldEmail        = "email"
	fieldPhone        = "phone"
	fieldFirstName    = "first_name"
	fieldLastName     = "last_name"
	fieldPasswordHash = "password_hash"
)

type Service interface {
	Register(ctx context.Context, req domain.CreateAccountRequest) (*domain.Account, error)
	Login(ctx context.Context, req domain.LoginRequest) (string, *domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	Update(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error)
	ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error
	List(ctx context.Context, excludeID string, limit int, cursor string) ([]domain.Account, string, error)
}

type accountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Put(ctx context.Context, a *domain.Account) error
	Update(ctx context.Context, accountID string, updates map[string]interface{}) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Account, string, error)
}

type jwtSigner interface {
	Sign(accountID, role string) (string, error)
}

type service struct {
	repo            accountStore
	jwtProvider     jwtSigner
	startingBalance int64
	dailyLimit      int64
	currency        string
}

type ServiceDeps struct {
	AccountRepo     accountStore
	JWTProvider     jwtSigner
	StartingBalance int64
	DailyLimit      int64
	Currency        string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:            deps.AccountRepo,
		jwtProvider:     deps.JWTProvider,
		startingBalance: deps.StartingBalance,
		dailyLimit:      deps.DailyLimit,
		currency:        deps.Currency,
	}
}

func (s *service) Register(ctx context.Context, req domain.CreateAccountRequest) (*domain.Account, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	walletID, err := wallet.NewID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	a := &domain.Account{
		AccountID:     id.New(),
		WalletID:      walletID,
		Email:         req.Email,
		Phone:         req.Phone,
		PasswordHash:  string(hash),
		Role:          domain.RoleUser,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Balance:       s.startingBalance,
		Currency:      s.currency,
		DailyLimit:    s.dailyLimit,
		LastResetDate: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Put(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.Account, error) {
	a, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	bearer, err := s.jwtProvider.Sign(a.AccountID, a.Role)
	if err != nil {
		return "", nil, err
	}
	return bearer, a, nil
}

func (s *service) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.Get(ctx, accountID)
}

func (s *service) Update(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error) {
	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates[fieldFirstName] = *req.FirstName
	}
	if req.LastName != nil {
		updates[fieldLastName] = *req.LastName
	}
	if req.Email != nil {
		updates[fieldEmail] = *req.Email
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, accountID)
	}
	if err := s.repo.Update(ctx, accountID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, accountID)
}

func (s *service) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	a, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, accountID, map[string]interface{}{fieldPasswordHash: string(hash)})
}

// List returns a page of other accounts for the quick-send picker, excluding
// the caller.
func (s *service) List(ctx context.Context, excludeID string, limit int, cursor string) ([]domain.Account, string, error) {
	if limit < 1 {
		limit = 10
	}
	accounts, next, err := s.repo.ScanPage(ctx, int32(limit)+1, cursor)
	if err != nil {
		return nil, "", err
	}
	out := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.AccountID == excludeID {
			continue
		}
		out = append(out, a)
		if len(out) == limit {
			break
		}
	}
	return out, next, nil
}
