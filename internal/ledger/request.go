package ledger

import "net/http"

// Action is the closed set of operations a transaction request may name.
type Action string

const (
	ActionDeposit  Action = "deposit"
	ActionWithdraw Action = "withdraw"
	ActionTransfer Action = "transfer"
)

// Valid reports whether the action is one of the known operations.
func (a Action) Valid() bool {
	switch a {
	case ActionDeposit, ActionWithdraw, ActionTransfer:
		return true
	}
	return false
}

// Request is an incoming transaction request before validation. Amount is
// kept untyped because clients send both JSON numbers and decimal strings.
type Request struct {
	Action      Action `json:"action"`
	Amount      any    `json:"amount"`
	RecipientID string `json:"recipientId,omitempty"`
}

// ValidateTransactionRequest checks the amount on an incoming request and
// returns the parsed value, or a 400 Result when it is missing or not a
// positive number. Recipient presence is deliberately not checked here:
// only transfers need one, and ApplyTransfer owns that rule.
func ValidateTransactionRequest(req Request) (float64, *Result) {
	amount, ok := ParsePositiveAmount(req.Amount)
	if !ok {
		return 0, &Result{
			OK:      false,
			Status:  http.StatusBadRequest,
			Message: "Invalid amount",
		}
	}

	return amount, nil
}
