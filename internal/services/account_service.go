package services

import (
	"errors"
	"log"
	"net/http"

	"github.com/horizonbank/backend/internal/ledger"
	"github.com/horizonbank/backend/internal/middleware"
	"github.com/horizonbank/backend/internal/store"
)

// AccountService serves read-only account views for the authenticated
// caller: balance, full account details and the recent-activity feed.
type AccountService struct {
	accounts store.AccountStore
}

func NewAccountService(accounts store.AccountStore) *AccountService {
	return &AccountService{accounts: accounts}
}

// GetBalance returns the caller's balance and transaction history.
func (as *AccountService) GetBalance(w http.ResponseWriter, r *http.Request) {
	account, ok := as.currentAccount(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"balance":      account.Balance,
		"transactions": account.Transactions,
	})
}

// MyAccount returns the caller's account details.
func (as *AccountService) MyAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := as.currentAccount(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account":      "myaccount",
		"balance":      account.Balance,
		"transactions": account.Transactions,
		"email":        account.Email,
	})
}

// RecentTransactions returns the caller's last five records, newest
// first.
func (as *AccountService) RecentTransactions(w http.ResponseWriter, r *http.Request) {
	account, ok := as.currentAccount(w, r)
	if !ok {
		return
	}

	recent := recentRecords(account.Transactions, 5)
	writeJSON(w, http.StatusOK, map[string]any{"transactions": recent})
}

// currentAccount resolves the session identity and loads its account,
// writing the 401/404/500 response itself when that fails.
func (as *AccountService) currentAccount(w http.ResponseWriter, r *http.Request) (*ledger.Account, bool) {
	identity := middleware.IdentityFrom(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
		return nil, false
	}

	account, err := as.accounts.FindByEmail(r.Context(), identity.Email)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Account not found"})
		return nil, false
	}
	if err != nil {
		log.Printf("[ACCOUNT] Failed to load account for %s: %v", identity.Email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal server error"})
		return nil, false
	}

	return account, true
}

// recentRecords returns up to n records in reverse insertion order.
func recentRecords(records []ledger.Record, n int) []ledger.Record {
	if len(records) < n {
		n = len(records)
	}
	recent := make([]ledger.Record, 0, n)
	for i := len(records) - 1; i >= len(records)-n; i-- {
		recent = append(recent, records[i])
	}
	return recent
}
