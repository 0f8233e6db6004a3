package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/horizonbank/backend/internal/ledger"
)

// PostgresAccountStore persists accounts in the accounts and transactions
// tables. Transaction records carry their row id once written; Save
// inserts only records that have no id yet, preserving append order.
type PostgresAccountStore struct {
	db *sql.DB
}

func NewPostgresAccountStore(db *sql.DB) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

func (s *PostgresAccountStore) FindByEmail(ctx context.Context, email string) (*ledger.Account, error) {
	return s.findOne(ctx, `SELECT id, owner_id, email, balance FROM accounts WHERE email = $1`, email)
}

func (s *PostgresAccountStore) FindByOwnerOrEmail(ctx context.Context, ref string) (*ledger.Account, error) {
	return s.findOne(ctx, `SELECT id, owner_id, email, balance FROM accounts WHERE email = $1 OR owner_id = $1`, ref)
}

func (s *PostgresAccountStore) findOne(ctx context.Context, query, arg string) (*ledger.Account, error) {
	account := &ledger.Account{}
	var ownerID sql.NullString
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&account.ID, &ownerID, &account.Email, &account.Balance)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	account.OwnerID = ownerID.String

	if err := s.loadTransactions(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *PostgresAccountStore) loadTransactions(ctx context.Context, account *ledger.Account) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, amount, date, counterparty_to, counterparty_from
		FROM transactions
		WHERE account_id = $1
		ORDER BY id`, account.ID)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var record ledger.Record
		var to, from sql.NullString
		if err := rows.Scan(&record.ID, &record.Kind, &record.Amount, &record.Date, &to, &from); err != nil {
			return fmt.Errorf("scan transaction: %w", err)
		}
		record.To = to.String
		record.From = from.String
		account.Transactions = append(account.Transactions, record)
	}
	return rows.Err()
}

func (s *PostgresAccountStore) Create(ctx context.Context, account *ledger.Account) error {
	account.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, owner_id, email, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())`,
		account.ID, nullable(account.OwnerID), account.Email, account.Balance)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresAccountStore) Save(ctx context.Context, account *ledger.Account) error {
	return s.SaveAll(ctx, account)
}

// SaveAll writes every account in one database transaction, so a transfer
// that touches two accounts is durable as a unit. Partial persistence of
// a transfer (sender debited, recipient never credited) is the hazard
// this closes.
func (s *PostgresAccountStore) SaveAll(ctx context.Context, accounts ...*ledger.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, account := range accounts {
		if err := s.saveTx(ctx, tx, account); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresAccountStore) saveTx(ctx context.Context, tx *sql.Tx, account *ledger.Account) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2`,
		account.Balance, account.ID)
	if err != nil {
		return fmt.Errorf("save account %s: %w", account.ID, err)
	}

	for i := range account.Transactions {
		record := &account.Transactions[i]
		if record.ID != 0 {
			continue
		}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO transactions (account_id, type, amount, date, counterparty_to, counterparty_from)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			account.ID, record.Kind, record.Amount, record.Date,
			nullable(record.To), nullable(record.From)).Scan(&record.ID)
		if err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
