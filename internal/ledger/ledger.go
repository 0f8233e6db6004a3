// Package ledger implements the account ledger core: pure, synchronous
// balance mutations over in-memory accounts. Every operation either
// rejects with no observable change or fully applies its balance update
// together with the matching transaction record. All blocking I/O
// (loading and persisting accounts, resolving identities) belongs to the
// callers, outside this package.
package ledger

import (
	"net/http"
	"time"
)

// Result is the structured outcome of a ledger operation. Domain failures
// (bad amount, insufficient funds, missing recipient) are expressed here
// as values; the package never panics for expected conditions. The HTTP
// layer surfaces Status and Message to the end user unchanged.
type Result struct {
	OK      bool
	Status  int
	Message string
	Balance float64 // sender's post-operation balance, meaningful only when OK
}

// ApplyDeposit credits the account and appends a Deposit record. It
// cannot fail: any positive amount is accepted.
func ApplyDeposit(account *Account, amount float64) Result {
	account.Balance += amount
	account.Transactions = append(account.Transactions, Record{
		Kind:   KindDeposit,
		Amount: amount,
		Date:   time.Now(),
	})

	return Result{
		OK:      true,
		Status:  http.StatusOK,
		Message: "Deposit Successful",
		Balance: account.Balance,
	}
}

// ApplyWithdrawal debits the account and appends a Withdrawal record.
// When the balance cannot cover the amount, the account is left untouched.
func ApplyWithdrawal(account *Account, amount float64) Result {
	if account.Balance < amount {
		return Result{
			OK:      false,
			Status:  http.StatusBadRequest,
			Message: "Insufficient Funds",
		}
	}

	account.Balance -= amount
	account.Transactions = append(account.Transactions, Record{
		Kind:   KindWithdrawal,
		Amount: amount,
		Date:   time.Now(),
	})

	return Result{
		OK:      true,
		Status:  http.StatusOK,
		Message: "Withdrawal Successful",
		Balance: account.Balance,
	}
}

// ApplyTransfer moves amount from sender to recipient, recording a
// Transfer on the sender and a Deposit on the recipient with
// cross-referenced counterparty owner ids. Checks run in order and the
// first failure wins with no mutation on either side. Both accounts are
// mutated together in memory on success; persisting the two accounts
// durably (two separate store writes) is the caller's responsibility, so
// integrations must bring their own cross-write guarantee such as a
// single database transaction covering both saves.
func ApplyTransfer(sender, recipient *Account, amount float64, recipientID string) Result {
	if recipientID == "" {
		return Result{
			OK:      false,
			Status:  http.StatusBadRequest,
			Message: "Recipient ID required",
		}
	}

	if recipient == nil {
		return Result{
			OK:      false,
			Status:  http.StatusNotFound,
			Message: "Recipient not found",
		}
	}

	if sender.Balance < amount {
		return Result{
			OK:      false,
			Status:  http.StatusBadRequest,
			Message: "Transfer Failed. Insufficient Funds",
		}
	}

	now := time.Now()

	sender.Balance -= amount
	sender.Transactions = append(sender.Transactions, Record{
		Kind:   KindTransfer,
		Amount: amount,
		Date:   now,
		To:     recipient.OwnerID,
	})

	recipient.Balance += amount
	recipient.Transactions = append(recipient.Transactions, Record{
		Kind:   KindDeposit,
		Amount: amount,
		Date:   now,
		From:   sender.OwnerID,
	})

	return Result{
		OK:      true,
		Status:  http.StatusOK,
		Message: "Transfer Successful",
		Balance: sender.Balance,
	}
}
