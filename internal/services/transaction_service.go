package services

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/spf13/viper"

	"github.com/horizonbank/backend/internal/ledger"
	"github.com/horizonbank/backend/internal/middleware"
	"github.com/horizonbank/backend/internal/store"
)

// TransactionService handles the transaction endpoint: it resolves the
// caller, loads (or provisions) the account, runs the matching ledger
// operation and persists the outcome. All domain decisions live in the
// ledger package; this layer is I/O glue.
type TransactionService struct {
	accounts       store.AccountStore
	users          store.UserStore
	openingBalance float64
}

func NewTransactionService(accounts store.AccountStore, users store.UserStore) *TransactionService {
	viper.SetDefault("account.opening_balance", 1000.0)
	return &TransactionService{
		accounts:       accounts,
		users:          users,
		openingBalance: viper.GetFloat64("account.opening_balance"),
	}
}

type transactionBody struct {
	Action      string `json:"action"`
	Amount      any    `json:"amount"`
	RecipientID string `json:"recipientId"`
	Email       string `json:"email"`
}

// Create processes a deposit, withdrawal or transfer request.
func (ts *TransactionService) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	var body transactionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Printf("[TRANSACTION] Invalid request body: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request"})
		return
	}

	email := body.Email
	if email == "" {
		if identity := middleware.IdentityFrom(ctx); identity != nil {
			email = identity.Email
		}
	}
	if email == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		return
	}

	action := ledger.Action(body.Action)
	if !action.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid Action"})
		return
	}

	account, err := ts.loadOrProvision(r, email)
	if err != nil {
		log.Printf("[TRANSACTION] Failed to load account for %s: %v", email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
		return
	}

	amount, validationResult := ledger.ValidateTransactionRequest(ledger.Request{
		Action:      action,
		Amount:      body.Amount,
		RecipientID: body.RecipientID,
	})
	if validationResult != nil {
		writeJSON(w, validationResult.Status, map[string]any{"message": validationResult.Message})
		return
	}

	switch action {
	case ledger.ActionDeposit:
		result := ledger.ApplyDeposit(account, amount)
		ts.persistAndRespond(w, r, result, account)

	case ledger.ActionWithdraw:
		result := ledger.ApplyWithdrawal(account, amount)
		if !result.OK {
			writeJSON(w, result.Status, map[string]any{"message": result.Message})
			return
		}
		ts.persistAndRespond(w, r, result, account)

	case ledger.ActionTransfer:
		recipient, err := ts.findRecipient(r, body.RecipientID)
		if err != nil {
			log.Printf("[TRANSACTION] Recipient lookup failed for %s: %v", body.RecipientID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
			return
		}

		result := ledger.ApplyTransfer(account, recipient, amount, body.RecipientID)
		if !result.OK {
			writeJSON(w, result.Status, map[string]any{"message": result.Message})
			return
		}

		// Both sides of the transfer go down in one store write so a
		// crash cannot leave the debit without the credit.
		if err := ts.accounts.SaveAll(r.Context(), account, recipient); err != nil {
			log.Printf("[TRANSACTION] Failed to persist transfer from %s: %v", email, err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
			return
		}

		log.Printf("[TRANSACTION] Transfer of %.2f from %s to %s", amount, email, body.RecipientID)
		writeJSON(w, result.Status, map[string]any{"message": result.Message, "balance": result.Balance})
	}
}

func (ts *TransactionService) persistAndRespond(w http.ResponseWriter, r *http.Request, result ledger.Result, account *ledger.Account) {
	if err := ts.accounts.Save(r.Context(), account); err != nil {
		log.Printf("[TRANSACTION] Failed to persist account %s: %v", account.Email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
		return
	}

	writeJSON(w, result.Status, map[string]any{"message": result.Message, "balance": result.Balance})
}

// loadOrProvision returns the account for email, creating one with the
// opening balance when the user transacts for the first time. The owner
// id is reconciled from the user record when one exists.
func (ts *TransactionService) loadOrProvision(r *http.Request, email string) (*ledger.Account, error) {
	ctx := r.Context()

	account, err := ts.accounts.FindByEmail(ctx, email)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	var ownerID string
	user, err := ts.users.FindByEmail(ctx, email)
	if err == nil {
		ownerID = user.ID
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	account = &ledger.Account{
		OwnerID: ownerID,
		Email:   email,
		Balance: ts.openingBalance,
	}
	if err := ts.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	log.Printf("[TRANSACTION] Provisioned account for %s", email)
	return account, nil
}

// findRecipient resolves a transfer target, which clients reference by
// email or owner id. A missing recipient is a domain outcome handled by
// ApplyTransfer, so it maps to (nil, nil) here.
func (ts *TransactionService) findRecipient(r *http.Request, recipientID string) (*ledger.Account, error) {
	if recipientID == "" {
		return nil, nil
	}

	recipient, err := ts.accounts.FindByOwnerOrEmail(r.Context(), recipientID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return recipient, nil
}
