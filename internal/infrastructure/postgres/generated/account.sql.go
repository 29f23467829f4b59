package generated

import (
	"context"
)

const accountExists = `-- name: AccountExists :one
SELECT EXISTS(SELECT 1 FROM accounts WHERE number = $1)
`

func (q *Queries) AccountExists(ctx context.Context, number string) (bool, error) {
	row := q.db.QueryRow(ctx, accountExists, number)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const getAccountByNumber = `-- name: GetAccountByNumber :one
SELECT number, currency FROM accounts
WHERE number = $1
`

func (q *Queries) GetAccountByNumber(ctx context.Context, number string) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByNumber, number)
	var i Account
	err := row.Scan(&i.Number, &i.Currency)
	return i, err
}
