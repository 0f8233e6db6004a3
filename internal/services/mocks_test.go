package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/horizonbank/backend/internal/ledger"
	"github.com/horizonbank/backend/internal/models"
)

type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) FindByEmail(ctx context.Context, email string) (*ledger.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountStore) FindByOwnerOrEmail(ctx context.Context, ref string) (*ledger.Account, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountStore) Create(ctx context.Context, account *ledger.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) Save(ctx context.Context, account *ledger.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) SaveAll(ctx context.Context, accounts ...*ledger.Account) error {
	callArgs := make([]any, 0, len(accounts)+1)
	callArgs = append(callArgs, ctx)
	for _, account := range accounts {
		callArgs = append(callArgs, account)
	}
	args := m.Called(callArgs...)
	return args.Error(0)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) SetResetToken(ctx context.Context, email, tokenHash string, expires time.Time) error {
	args := m.Called(ctx, email, tokenHash, expires)
	return args.Error(0)
}

func (m *MockUserStore) FindByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

// MockMailer records sent messages for assertions.
type MockMailer struct {
	To      []string
	Subject []string
	Body    []string
	Err     error
}

func (m *MockMailer) Send(to, subject, body string) error {
	if m.Err != nil {
		return m.Err
	}
	m.To = append(m.To, to)
	m.Subject = append(m.Subject, subject)
	m.Body = append(m.Body, body)
	return nil
}
