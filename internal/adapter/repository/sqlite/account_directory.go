package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iho/cashledger/internal/domain"
)

// AccountDirectory reads the accounts table. It implements
// usecase.AccountDirectory.
type AccountDirectory struct {
	db *sql.DB
}

// NewAccountDirectory creates a new AccountDirectory.
func NewAccountDirectory(db *sql.DB) *AccountDirectory {
	return &AccountDirectory{db: db}
}

// Exists reports whether number is a known account.
func (d *AccountDirectory) Exists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE number = ?)`, number).Scan(&exists)
	return exists, err
}

// CurrencyOf returns the currency of an account.
func (d *AccountDirectory) CurrencyOf(ctx context.Context, number string) (string, error) {
	var currency string
	err := d.db.QueryRowContext(ctx, `SELECT currency FROM accounts WHERE number = ?`, number).Scan(&currency)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrAccountNotFound
	}
	return currency, err
}
