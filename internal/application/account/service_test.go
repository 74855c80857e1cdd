package account

import (
	"context"
	"errors"
	"testing"

	"github.com/go-wallet-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockAccountStore struct{ mock.Mock }

func (m *mockAccountStore) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) Put(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockAccountStore) Update(ctx context.Context, accountID string, updates map[string]interface{}) error {
	return m.Called(ctx, accountID, updates).Error(0)
}
func (m *mockAccountStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Account, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.Account), args.String(1), args.Error(2)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(accountID, role string) (string, error) {
	args := m.Called(accountID, role)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func newTestService(repo *mockAccountStore, jwt *mockJWTSigner) Service {
	return NewService(ServiceDeps{
		AccountRepo:     repo,
		JWTProvider:     jwt,
		StartingBalance: 1000,
		DailyLimit:      5000,
		Currency:        "USD",
	})
}

func registerReq() domain.CreateAccountRequest {
	return domain.CreateAccountRequest{
		Email:     "alice@example.com",
		Password:  "password123",
		FirstName: "Alice",
		LastName:  "Smith",
	}
}

func hashed(password string) string {
	h, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(h)
}

// --- Register tests ---

func TestRegister_EmailConflict(t *testing.T) {
	repo := &mockAccountStore{}
	repo.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.Account{}, nil)

	svc := newTestService(repo, nil)
	_, err := svc.Register(context.Background(), registerReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	repo.AssertExpectations(t)
}

func TestRegister_HappyPath_SeedsWallet(t *testing.T) {
	repo := &mockAccountStore{}
	repo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	repo.On("Put", mock.Anything, mock.AnythingOfType("*domain.Account")).Return(nil)

	svc := newTestService(repo, nil)
	a, err := svc.Register(context.Background(), registerReq())

	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, a.Role)
	assert.Equal(t, int64(1000), a.Balance)
	assert.Equal(t, int64(5000), a.DailyLimit)
	assert.Equal(t, int64(0), a.DailyUsage)
	assert.Equal(t, "USD", a.Currency)
	assert.False(t, a.IsFrozen)
	assert.NotEmpty(t, a.AccountID)
	assert.Len(t, a.WalletID, 9)
	assert.NotEqual(t, "password123", a.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("password123")))
	repo.AssertExpectations(t)
}

// --- Login tests ---

func TestLogin_UnknownEmail(t *testing.T) {
	repo := &mockAccountStore{}
	repo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	svc := newTestService(repo, nil)
	_, _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "ghost@example.com", Password: "whatever"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := &mockAccountStore{}
	repo.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.Account{
		AccountID:    "acct1",
		PasswordHash: hashed("correct-password"),
	}, nil)

	svc := newTestService(repo, nil)
	_, _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_HappyPath(t *testing.T) {
	repo := &mockAccountStore{}
	repo.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.Account{
		AccountID:    "acct1",
		Role:         domain.RoleUser,
		PasswordHash: hashed("password123"),
	}, nil)

	jwt := &mockJWTSigner{}
	jwt.On("Sign", "acct1", domain.RoleUser).Return("bearer-token", nil)

	svc := newTestService(repo, jwt)
	bearer, a, err := svc.Login(context.Background(), domain.LoginRequest{Email: "alice@example.com", Password: "password123"})

	require.NoError(t, err)
	assert.Equal(t, "bearer-token", bearer)
	assert.Equal(t, "acct1", a.AccountID)
	jwt.AssertExpectations(t)
}

// --- Update tests ---

func ptr[T any](v T) *T { return &v }

func TestUpdate_EmptyRequest_ReturnsExistingAccount(t *testing.T) {
	existing := &domain.Account{AccountID: "acct1", Email: "alice@example.com"}
	repo := &mockAccountStore{}
	repo.On("Get", mock.Anything, "acct1").Return(existing, nil)

	svc := newTestService(repo, nil)
	a, err := svc.Update(context.Background(), "acct1", domain.UpdateAccountRequest{})

	require.NoError(t, err)
	assert.Equal(t, existing, a)
	repo.AssertNotCalled(t, "Update")
}

func TestUpdate_PartialFields(t *testing.T) {
	updated := &domain.Account{AccountID: "acct1", FirstName: "Alicia"}
	repo := &mockAccountStore{}
	repo.On("Update", mock.Anything, "acct1", map[string]interface{}{
		"first_name": "Alicia",
		"phone":      "+15550009",
	}).Return(nil)
	repo.On("Get", mock.Anything, "acct1").Return(updated, nil)

	svc := newTestService(repo, nil)
	a, err := svc.Update(context.Background(), "acct1", domain.UpdateAccountRequest{
		FirstName: ptr("Alicia"),
		Phone:     ptr("+15550009"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Alicia", a.FirstName)
	repo.AssertExpectations(t)
}

// --- ChangePassword tests ---

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	repo := &mockAccountStore{}
	repo.On("Get", mock.Anything, "acct1").Return(&domain.Account{
		AccountID:    "acct1",
		PasswordHash: hashed("old-password"),
	}, nil)

	svc := newTestService(repo, nil)
	err := svc.ChangePassword(context.Background(), "acct1", "not-my-password", "new-password")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	repo.AssertNotCalled(t, "Update")
}

func TestChangePassword_HappyPath(t *testing.T) {
	repo := &mockAccountStore{}
	repo.On("Get", mock.Anything, "acct1").Return(&domain.Account{
		AccountID:    "acct1",
		PasswordHash: hashed("old-password"),
	}, nil)
	repo.On("Update", mock.Anything, "acct1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		hash, ok := updates["password_hash"].(string)
		return ok && bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-password")) == nil
	})).Return(nil)

	svc := newTestService(repo, nil)
	err := svc.ChangePassword(context.Background(), "acct1", "old-password", "new-password")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

// --- List tests ---

func TestList_ExcludesCaller(t *testing.T) {
	repo := &mockAccountStore{}
	repo.On("ScanPage", mock.Anything, int32(3), "").Return([]domain.Account{
		{AccountID: "acct1"},
		{AccountID: "acct2"},
		{AccountID: "acct3"},
	}, "next-cursor", nil)

	svc := newTestService(repo, nil)
	accounts, next, err := svc.List(context.Background(), "acct2", 2, "")

	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "acct1", accounts[0].AccountID)
	assert.Equal(t, "acct3", accounts[1].AccountID)
	assert.Equal(t, "next-cursor", next)
}

func TestList_PropagatesStoreError(t *testing.T) {
	storeErr := errors.New("dynamo error")
	repo := &mockAccountStore{}
	repo.On("ScanPage", mock.Anything, int32(11), "").Return([]domain.Account(nil), "", storeErr)

	svc := newTestService(repo, nil)
	_, _, err := svc.List(context.Background(), "acct1", 0, "")

	require.Error(t, err)
	assert.Equal(t, storeErr, err)
}
