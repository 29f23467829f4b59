package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createOperation = `-- name: CreateOperation :one
INSERT INTO operations (account, debit, credit)
VALUES ($1, $2, $3)
RETURNING id, account, debit, credit, created
`

type CreateOperationParams struct {
	Account string         `json:"account"`
	Debit   pgtype.Numeric `json:"debit"`
	Credit  pgtype.Numeric `json:"credit"`
}

func (q *Queries) CreateOperation(ctx context.Context, arg CreateOperationParams) (Operation, error) {
	row := q.db.QueryRow(ctx, createOperation, arg.Account, arg.Debit, arg.Credit)
	var i Operation
	err := row.Scan(
		&i.ID,
		&i.Account,
		&i.Debit,
		&i.Credit,
		&i.Created,
	)
	return i, err
}

const deleteOperation = `-- name: DeleteOperation :execrows
DELETE FROM operations WHERE id = $1
`

func (q *Queries) DeleteOperation(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteOperation, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getAccountBalance = `-- name: GetAccountBalance :one
SELECT (COALESCE(SUM(debit), 0) - COALESCE(SUM(credit), 0))::NUMERIC AS balance
FROM operations
WHERE account = $1
`

func (q *Queries) GetAccountBalance(ctx context.Context, account string) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, getAccountBalance, account)
	var balance pgtype.Numeric
	err := row.Scan(&balance)
	return balance, err
}

const getOperationByID = `-- name: GetOperationByID :one
SELECT id, account, debit, credit, created FROM operations
WHERE id = $1
`

func (q *Queries) GetOperationByID(ctx context.Context, id int64) (Operation, error) {
	row := q.db.QueryRow(ctx, getOperationByID, id)
	var i Operation
	err := row.Scan(
		&i.ID,
		&i.Account,
		&i.Debit,
		&i.Credit,
		&i.Created,
	)
	return i, err
}

const listOperationsByAccount = `-- name: ListOperationsByAccount :many
SELECT id, account, debit, credit, created FROM operations
WHERE account = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

type ListOperationsByAccountParams struct {
	Account string `json:"account"`
	Limit   int32  `json:"limit"`
	Offset  int32  `json:"offset"`
}

func (q *Queries) ListOperationsByAccount(ctx context.Context, arg ListOperationsByAccountParams) ([]Operation, error) {
	rows, err := q.db.Query(ctx, listOperationsByAccount, arg.Account, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Operation
	for rows.Next() {
		var i Operation
		if err := rows.Scan(
			&i.ID,
			&i.Account,
			&i.Debit,
			&i.Credit,
			&i.Created,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
