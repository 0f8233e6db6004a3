// Package store defines the persistence interfaces the ledger core's
// callers depend on, plus their Postgres implementations. The ledger
// itself never owns storage lifecycle: handlers load an account, apply
// one operation, and hand the mutated entity back to the store.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/horizonbank/backend/internal/ledger"
	"github.com/horizonbank/backend/internal/models"
)

// ErrNotFound is returned when a lookup matches nothing. Callers treat it
// as a domain condition, not an infrastructure failure.
var ErrNotFound = errors.New("store: not found")

// AccountStore loads and persists ledger accounts. Save must write the
// balance and any transaction records appended since the account was
// loaded.
type AccountStore interface {
	// FindByEmail returns the account keyed by email, or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*ledger.Account, error)
	// FindByOwnerOrEmail resolves a transfer recipient reference, which
	// clients supply as either an email or an owner id.
	FindByOwnerOrEmail(ctx context.Context, ref string) (*ledger.Account, error)
	// Create provisions a new account and assigns its ID.
	Create(ctx context.Context, account *ledger.Account) error
	// Save persists the balance and appends unpersisted records.
	Save(ctx context.Context, account *ledger.Account) error
	// SaveAll persists several accounts atomically, for operations such
	// as transfers that mutate two accounts together.
	SaveAll(ctx context.Context, accounts ...*ledger.Account) error
}

// UserStore persists identity records. It is touched by the ledger flow
// only to resolve an owner id for newly provisioned accounts.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// SetResetToken stores a hashed password-reset token with its expiry.
	SetResetToken(ctx context.Context, email, tokenHash string, expires time.Time) error
	// FindByResetToken returns the user holding an unexpired matching
	// token hash, or ErrNotFound.
	FindByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	// UpdatePassword replaces the password hash and clears any pending
	// reset token.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
