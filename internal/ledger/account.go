package ledger

import (
	"time"
)

// Kind classifies a transaction record.
type Kind string

const (
	KindDeposit    Kind = "Deposit"
	KindWithdrawal Kind = "Withdrawal"
	KindTransfer   Kind = "Transfer"
)

// Record is one completed ledger effect on an account. Records are
// append-only: once written they are never modified or removed.
type Record struct {
	ID     int64     `json:"-" db:"id"` // assigned by the store, 0 until persisted
	Kind   Kind      `json:"type" db:"type"`
	Amount float64   `json:"amount" db:"amount"`
	Date   time.Time `json:"date" db:"date"`
	To     string    `json:"to,omitempty" db:"counterparty_to"`     // outbound transfer target owner id
	From   string    `json:"from,omitempty" db:"counterparty_from"` // inbound credit source owner id
}

// Account is a per-user balance plus transaction history. The balance is
// only ever changed through the Apply* operations in this package; callers
// load an account from a store, apply exactly one operation, and persist it.
type Account struct {
	ID           string   `json:"-" db:"id"`
	OwnerID      string   `json:"userId,omitempty" db:"owner_id"` // empty until reconciled with a user record
	Email        string   `json:"email" db:"email"`
	Balance      float64  `json:"balance" db:"balance"`
	Transactions []Record `json:"transactions"`
}
