package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/postgres/generated"
)

// AccountDirectory reads the accounts table. It implements
// usecase.AccountDirectory.
type AccountDirectory struct {
	queries *generated.Queries
}

// NewAccountDirectory creates a new AccountDirectory.
func NewAccountDirectory(db generated.DBTX) *AccountDirectory {
	return &AccountDirectory{queries: generated.New(db)}
}

// Exists reports whether number is a known account.
func (d *AccountDirectory) Exists(ctx context.Context, number string) (bool, error) {
	return d.queries.AccountExists(ctx, number)
}

// CurrencyOf returns the currency of an account.
func (d *AccountDirectory) CurrencyOf(ctx context.Context, number string) (string, error) {
	row, err := d.queries.GetAccountByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrAccountNotFound
		}

		return "", err
	}

	return row.Currency, nil
}
