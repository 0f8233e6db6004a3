package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/horizonbank/backend/internal/ledger"
	"github.com/horizonbank/backend/internal/middleware"
	"github.com/horizonbank/backend/internal/models"
	"github.com/horizonbank/backend/internal/session"
	"github.com/horizonbank/backend/internal/store"
)

func postTransaction(t *testing.T, service *TransactionService, body map[string]any, identity *session.Identity) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/api/transactions", bytes.NewBuffer(payload))
	if identity != nil {
		r = r.WithContext(middleware.WithIdentity(r.Context(), identity))
	}
	w := httptest.NewRecorder()

	service.Create(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestTransactionService_Create(t *testing.T) {
	t.Run("unauthorized without session or email", func(t *testing.T) {
		service := NewTransactionService(new(MockAccountStore), new(MockUserStore))

		w := postTransaction(t, service, map[string]any{"action": "deposit", "amount": 10}, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Unauthorized", decodeBody(t, w)["message"])
	})

	t.Run("unknown action", func(t *testing.T) {
		service := NewTransactionService(new(MockAccountStore), new(MockUserStore))

		w := postTransaction(t, service, map[string]any{
			"action": "refund", "amount": 10, "email": "alice@example.com",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid Action", decodeBody(t, w)["message"])
	})

	t.Run("invalid amount", func(t *testing.T) {
		accounts := new(MockAccountStore)
		accounts.On("FindByEmail", mock.Anything, "alice@example.com").
			Return(&ledger.Account{ID: "acct-1", Email: "alice@example.com", Balance: 100}, nil)

		service := NewTransactionService(accounts, new(MockUserStore))

		w := postTransaction(t, service, map[string]any{
			"action": "deposit", "amount": "abc", "email": "alice@example.com",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid amount", decodeBody(t, w)["message"])
		accounts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("deposit via session identity", func(t *testing.T) {
		account := &ledger.Account{ID: "acct-1", Email: "alice@example.com", Balance: 100}
		accounts := new(MockAccountStore)
		accounts.On("FindByEmail", mock.Anything, "alice@example.com").Return(account, nil)
		accounts.On("Save", mock.Anything, account).Return(nil)

		service := NewTransactionService(accounts, new(MockUserStore))

		w := postTransaction(t, service, map[string]any{"action": "deposit", "amount": 25},
			&session.Identity{Email: "alice@example.com"})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, "Deposit Successful", resp["message"])
		assert.Equal(t, 125.0, resp["balance"])

		assert.Equal(t, 125.0, account.Balance)
		require.Len(t, account.Transactions, 1)
		assert.Equal(t, ledger.KindDeposit, account.Transactions[0].Kind)
		accounts.AssertExpectations(t)
	})

	t.Run("withdrawal with insufficient funds is not persisted", func(t *testing.T) {
		account := &ledger.Account{ID: "acct-1", Email: "alice@example.com", Balance: 10}
		accounts := new(MockAccountStore)
		accounts.On("FindByEmail", mock.Anything, "alice@example.com").Return(account, nil)

		service := NewTransactionService(accounts, new(MockUserStore))

		w := postTransaction(t, service, map[string]any{
			"action": "withdraw", "amount": 20, "email": "alice@example.com",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Insufficient Funds", decodeBody(t, w)["message"])
		assert.Equal(t, 10.0, account.Balance)
		assert.Empty(t, account.Transactions)
		accounts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("withdrawal success", func(t *testing.T) {
		account := &ledger.Account{ID: "acct-1", Email: "alice@example.com", Balance: 100}
		accounts := new(MockAccountStore)
		accounts.On("FindByEmail", mock.Anything, "alice@example.com").Return(account, nil)
		accounts.On("Save", mock.Anything, account).Return(nil)

		service := NewTransactionService(accounts, new(MockUserStore))

		w := postTransaction(t, service, map[string]any{
			"action": "withdraw", "amount": "40", "email": "alice@example.com",
		}, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, "Withdrawal Successful", resp["message"])
		assert.Equal(t, 60.0, resp["balance"])
	})

	t.Run("transfer without recipient id", func(t *testing.T) {
		account := &ledger.Account{ID: "acct-1", Email: "alice@example.com", Balance: 100}
		accounts := new(MockAccountStore)
		accounts.On("FindByEmail", mock.Anything, "alice@example.com").Return(account, nil)

		service := NewTransactionService(accounts, new(MockUserStore))

		w := postTransaction(t, service, map[string]any{
			"action": "transfer", "amount": 25, "email": "alice@example.com",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Recipient ID required", decodeBody(t, w)["message"])
		assert.Equal(t, 100.0, account.Balance)
	})

	t.Run("transfer to unknown recipient", func(t *testing.T) {
		account := &ledger.Account{ID: "acct-1", Email: "alice@example.com", Balance: 100}
		accounts := new(MockAccountStore)
		accounts.On("FindByEmail", mock.Anything, "alice@example.com").Return(account, nil)
		accounts.On("FindByOwnerOrEmail", mock.Anything, "ghost").Return(nil, store.ErrNotFound)

		service := NewTransactionService(accounts, new(MockUserStore))

		w := postTransaction(t, service, map[string]any{
			"action": "transfer", "amount": 25, "recipientId": "ghost", "email": "alice@example.com",
		}, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Recipient not found", decodeBody(t, w)["message"])
		assert.Equal(t, 100.0, account.Balance)
	})

	t.Run("transfer success persists both accounts together", func(t *testing.T) {
		sender := &ledger.Account{ID: "acct-1", OwnerID: "s1", Email: "sender@example.com", Balance: 100}
		recipient := &ledger.Account{ID: "acct-2", OwnerID: "r1", Email: "recipient@example.com", Balance: 10}

		accounts := new(MockAccountStore)
		accounts.On("FindByEmail", mock.Anything, "sender@example.com").Return(sender, nil)
		accounts.On("FindByOwnerOrEmail", mock.Anything, "r1").Return(recipient, nil)
		accounts.On("SaveAll", mock.Anything, sender, recipient).Return(nil)

		service := NewTransactionService(accounts, new(MockUserStore))

		w := postTransaction(t, service, map[string]any{
			"action": "transfer", "amount": 25, "recipientId": "r1", "email": "sender@example.com",
		}, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, "Transfer Successful", resp["message"])
		assert.Equal(t, 75.0, resp["balance"])

		assert.Equal(t, 75.0, sender.Balance)
		assert.Equal(t, 35.0, recipient.Balance)
		require.Len(t, sender.Transactions, 1)
		assert.Equal(t, "r1", sender.Transactions[0].To)
		require.Len(t, recipient.Transactions, 1)
		assert.Equal(t, "s1", recipient.Transactions[0].From)
		accounts.AssertExpectations(t)
	})

	t.Run("first transaction provisions an account", func(t *testing.T) {
		accounts := new(MockAccountStore)
		accounts.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, store.ErrNotFound)
		accounts.On("Create", mock.Anything, mock.MatchedBy(func(a *ledger.Account) bool {
			return a.Email == "new@example.com" && a.Balance == 1000 && a.OwnerID == "user-9"
		})).Return(nil)
		accounts.On("Save", mock.Anything, mock.Anything).Return(nil)

		users := new(MockUserStore)
		users.On("FindByEmail", mock.Anything, "new@example.com").
			Return(&models.User{ID: "user-9", Email: "new@example.com"}, nil)

		service := NewTransactionService(accounts, users)

		w := postTransaction(t, service, map[string]any{
			"action": "deposit", "amount": 50, "email": "new@example.com",
		}, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, "Deposit Successful", resp["message"])
		assert.Equal(t, 1050.0, resp["balance"])
		accounts.AssertExpectations(t)
		users.AssertExpectations(t)
	})
}
