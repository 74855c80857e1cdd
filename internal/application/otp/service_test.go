package otp

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/go-wallet-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAccountStore struct{ mock.Mock }

func (m *mockAccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) SaveVersioned(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}

type mockChallengeStore struct{ mock.Mock }

func (m *mockChallengeStore) Put(ctx context.Context, c *domain.OTPChallenge) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockChallengeStore) LatestUnexpired(ctx context.Context, phone string, now time.Time) (*domain.OTPChallenge, error) {
	args := m.Called(ctx, phone, now)
	if c, _ := args.Get(0).(*domain.OTPChallenge); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockChallengeStore) Delete(ctx context.Context, phone, issuedAt string) error {
	return m.Called(ctx, phone, issuedAt).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

// --- helpers ---

func newTestService(as *mockAccountStore, cs *mockChallengeStore, sms *mockSMSSender, echo bool) Service {
	return NewService(ServiceDeps{
		AccountRepo:   as,
		ChallengeRepo: cs,
		SMSSender:     sms,
		TTL:           5 * time.Minute,
		MaxAttempts:   3,
		EchoCode:      echo,
	})
}

func phoneAccount() *domain.Account {
	phone := "+15550001"
	return &domain.Account{
		AccountID: "acct1",
		Email:     "alice@example.com",
		Phone:     &phone,
	}
}

func activeChallenge(code string) *domain.OTPChallenge {
	now := time.Now().UTC()
	return &domain.OTPChallenge{
		Phone:     "+15550001",
		IssuedAt:  now.Format(domain.TimeSortLayout),
		Email:     "alice@example.com",
		Code:      code,
		ExpiresAt: now.Add(5 * time.Minute).Unix(),
	}
}

// --- Request tests ---

func TestRequest_AccountNotFound(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	svc := newTestService(as, &mockChallengeStore{}, &mockSMSSender{}, false)
	_, err := svc.Request(context.Background(), "ghost@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRequest_NoPhoneOnAccount(t *testing.T) {
	account := phoneAccount()
	account.Phone = nil

	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "alice@example.com").Return(account, nil)

	svc := newTestService(as, &mockChallengeStore{}, &mockSMSSender{}, false)
	_, err := svc.Request(context.Background(), "alice@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRequest_StoresSixDigitChallengeAndSendsSMS(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "alice@example.com").Return(phoneAccount(), nil)

	var stored *domain.OTPChallenge
	cs := &mockChallengeStore{}
	cs.On("Put", mock.Anything, mock.AnythingOfType("*domain.OTPChallenge")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.OTPChallenge)
	}).Return(nil)

	sms := &mockSMSSender{}
	sms.On("SendSMS", mock.Anything, "+15550001", mock.Anything).Return(nil)

	svc := newTestService(as, cs, sms, false)
	res, err := svc.Request(context.Background(), "alice@example.com")

	require.NoError(t, err)
	assert.True(t, res.SMSSent)
	assert.Empty(t, res.Code)
	require.NotNil(t, stored)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), stored.Code)
	assert.Equal(t, "+15550001", stored.Phone)
	assert.Greater(t, stored.ExpiresAt, time.Now().UTC().Unix())
	sms.AssertExpectations(t)
}

func TestRequest_EchoModeReturnsCode(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "alice@example.com").Return(phoneAccount(), nil)

	cs := &mockChallengeStore{}
	cs.On("Put", mock.Anything, mock.Anything).Return(nil)

	sms := &mockSMSSender{}
	sms.On("SendSMS", mock.Anything, "+15550001", mock.Anything).Return(nil)

	svc := newTestService(as, cs, sms, true)
	res, err := svc.Request(context.Background(), "alice@example.com")

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), res.Code)
}

func TestRequest_SMSFailureKeepsChallengeActive(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "alice@example.com").Return(phoneAccount(), nil)

	cs := &mockChallengeStore{}
	cs.On("Put", mock.Anything, mock.Anything).Return(nil)

	sms := &mockSMSSender{}
	sms.On("SendSMS", mock.Anything, "+15550001", mock.Anything).Return(errors.New("sns unavailable"))

	svc := newTestService(as, cs, sms, false)
	res, err := svc.Request(context.Background(), "alice@example.com")

	require.NoError(t, err)
	assert.False(t, res.SMSSent)
	cs.AssertExpectations(t)
}

// --- Verify tests ---

func TestVerify_MatchConsumesChallenge(t *testing.T) {
	account := phoneAccount()
	challenge := activeChallenge("123456")

	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "alice@example.com").Return(account, nil)

	cs := &mockChallengeStore{}
	cs.On("LatestUnexpired", mock.Anything, "+15550001", mock.Anything).Return(challenge, nil)
	cs.On("Delete", mock.Anything, challenge.Phone, challenge.IssuedAt).Return(nil)

	svc := newTestService(as, cs, &mockSMSSender{}, false)
	err := svc.Verify(context.Background(), "alice@example.com", "123456")

	require.NoError(t, err)
	cs.AssertExpectations(t)
}

func TestVerify_MatchResetsFailureCounter(t *testing.T) {
	account := phoneAccount()
	account.OTPAttempts = 2
	challenge := activeChallenge("123456")

	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "alice@example.com").Return(account, nil)
	as.On("SaveVersioned", mock.Anything, account).Return(nil)

	cs := &mockChallengeStore{}
	cs.On("LatestUnexpired", mock.Anything, "+15550001", mock.Anything).Return(challenge, nil)
	cs.On("Delete", mock.Anything, challenge.Phone, challenge.IssuedAt).Return(nil)

	svc := newTestService(as, cs, &mockSMSSender{}, false)
	err := svc.Verify(context.Background(), "alice@example.com", "123456")

	require.NoError(t, err)
	assert.Equal(t, 0, account.OTPAttempts)
	as.AssertExpectations(t)
}

func TestVerify_WrongCodeCountsDownAttempts(t *testing.T) {
	account := phoneAccount()
	challenge := activeChallenge("123456")

	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "alice@example.com").Return(account, nil)
	as.On("SaveVersioned", mock.Anything, account).Return(nil)

	cs := &mockChallengeStore{}
	cs.On("LatestUnexpired", mock.Anything, "+15550001", mock.Anything).Return(challenge, nil)

	svc := newTestService(as, cs, &mockSMSSender{}, false)
	err := svc.Verify(context.Background(), "alice@example.com", "000000")

	require.Error(t, err)
	var invalid *domain.InvalidCodeError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 2, invalid.AttemptsRemaining)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	assert.False(t, account.IsFrozen)
}

func TestVerify_ThirdMissFreezesAccount(t *testing.T) {
	account := phoneAccount()
	account.OTPAttempts = 2
	challenge := activeChallenge("123456")

	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "alice@example.com").Return(account, nil)
	as.On("SaveVersioned", mock.Anything, account).Return(nil)

	cs := &mockChallengeStore{}
	cs.On("LatestUnexpired", mock.Anything, "+15550001", mock.Anything).Return(challenge, nil)

	svc := newTestService(as, cs, &mockSMSSender{}, false)
	err := svc.Verify(context.Background(), "alice@example.com", "000000")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.True(t, account.IsFrozen)
	assert.Equal(t, 3, account.OTPAttempts)
}

func TestVerify_FrozenAccountRejected(t *testing.T) {
	account := phoneAccount()
	account.IsFrozen = true

	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "alice@example.com").Return(account, nil)

	svc := newTestService(as, &mockChallengeStore{}, &mockSMSSender{}, false)
	err := svc.Verify(context.Background(), "alice@example.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestVerify_ExpiredChallengeBehavesLikeMiss(t *testing.T) {
	account := phoneAccount()

	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "alice@example.com").Return(account, nil)
	as.On("SaveVersioned", mock.Anything, account).Return(nil)

	cs := &mockChallengeStore{}
	cs.On("LatestUnexpired", mock.Anything, "+15550001", mock.Anything).Return(nil, domain.ErrNotFound)

	svc := newTestService(as, cs, &mockSMSSender{}, false)
	err := svc.Verify(context.Background(), "alice@example.com", "123456")

	require.Error(t, err)
	var invalid *domain.InvalidCodeError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 2, invalid.AttemptsRemaining)
}

func TestVerify_StoreFaultDoesNotCountTowardLockout(t *testing.T) {
	account := phoneAccount()
	account.OTPAttempts = 2

	storeErr := errors.New("dynamodb: request timeout")
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "alice@example.com").Return(account, nil)

	cs := &mockChallengeStore{}
	cs.On("LatestUnexpired", mock.Anything, "+15550001", mock.Anything).Return(nil, storeErr)

	svc := newTestService(as, cs, &mockSMSSender{}, false)
	err := svc.Verify(context.Background(), "alice@example.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, storeErr))
	assert.False(t, errors.Is(err, domain.ErrForbidden))
	assert.False(t, account.IsFrozen)
	assert.Equal(t, 2, account.OTPAttempts)
	as.AssertNotCalled(t, "SaveVersioned")
}

func TestVerify_RetriesCounterWriteOnConflict(t *testing.T) {
	account := phoneAccount()
	challenge := activeChallenge("123456")

	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "alice@example.com").Return(account, nil)
	as.On("SaveVersioned", mock.Anything, account).Return(domain.ErrConflict).Once()
	as.On("SaveVersioned", mock.Anything, account).Return(nil).Once()

	cs := &mockChallengeStore{}
	cs.On("LatestUnexpired", mock.Anything, "+15550001", mock.Anything).Return(challenge, nil)

	svc := newTestService(as, cs, &mockSMSSender{}, false)
	err := svc.Verify(context.Background(), "alice@example.com", "000000")

	require.Error(t, err)
	var invalid *domain.InvalidCodeError
	require.True(t, errors.As(err, &invalid))
	as.AssertExpectations(t)
}

func TestVerify_ConsumedChallengeDeleteFailureStillSucceeds(t *testing.T) {
	account := phoneAccount()
	challenge := activeChallenge("123456")

	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "alice@example.com").Return(account, nil)

	cs := &mockChallengeStore{}
	cs.On("LatestUnexpired", mock.Anything, "+15550001", mock.Anything).Return(challenge, nil)
	cs.On("Delete", mock.Anything, challenge.Phone, challenge.IssuedAt).Return(errors.New("dynamo error"))

	svc := newTestService(as, cs, &mockSMSSender{}, false)
	err := svc.Verify(context.Background(), "alice@example.com", "123456")

	require.NoError(t, err)
}
