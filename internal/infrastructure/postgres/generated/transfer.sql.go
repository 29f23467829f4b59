package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const addTransferOperation = `-- name: AddTransferOperation :exec
INSERT INTO transfer_operations (transfer_id, operation_id, position)
VALUES ($1, $2, $3)
`

type AddTransferOperationParams struct {
	TransferID  int64 `json:"transfer_id"`
	OperationID int64 `json:"operation_id"`
	Position    int16 `json:"position"`
}

func (q *Queries) AddTransferOperation(ctx context.Context, arg AddTransferOperationParams) error {
	_, err := q.db.Exec(ctx, addTransferOperation, arg.TransferID, arg.OperationID, arg.Position)
	return err
}

const createTransfer = `-- name: CreateTransfer :one
INSERT INTO transfers DEFAULT VALUES
RETURNING id, created
`

func (q *Queries) CreateTransfer(ctx context.Context) (Transfer, error) {
	row := q.db.QueryRow(ctx, createTransfer)
	var i Transfer
	err := row.Scan(&i.ID, &i.Created)
	return i, err
}

const deleteTransfer = `-- name: DeleteTransfer :execrows
DELETE FROM transfers WHERE id = $1
`

func (q *Queries) DeleteTransfer(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteTransfer, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteTransferOperations = `-- name: DeleteTransferOperations :exec
DELETE FROM transfer_operations WHERE transfer_id = $1
`

func (q *Queries) DeleteTransferOperations(ctx context.Context, transferID int64) error {
	_, err := q.db.Exec(ctx, deleteTransferOperations, transferID)
	return err
}

const getTransferByID = `-- name: GetTransferByID :one
SELECT t.id, t.created, array_agg(o.operation_id ORDER BY o.position)::BIGINT[] AS operation_ids
FROM transfers t
JOIN transfer_operations o ON o.transfer_id = t.id
WHERE t.id = $1
GROUP BY t.id, t.created
`

type GetTransferByIDRow struct {
	ID           int64              `json:"id"`
	Created      pgtype.Timestamptz `json:"created"`
	OperationIds []int64            `json:"operation_ids"`
}

func (q *Queries) GetTransferByID(ctx context.Context, id int64) (GetTransferByIDRow, error) {
	row := q.db.QueryRow(ctx, getTransferByID, id)
	var i GetTransferByIDRow
	err := row.Scan(&i.ID, &i.Created, &i.OperationIds)
	return i, err
}

const listTransfers = `-- name: ListTransfers :many
SELECT t.id, t.created, array_agg(o.operation_id ORDER BY o.position)::BIGINT[] AS operation_ids
FROM transfers t
JOIN transfer_operations o ON o.transfer_id = t.id
GROUP BY t.id, t.created
ORDER BY t.id
LIMIT $1 OFFSET $2
`

type ListTransfersParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

type ListTransfersRow struct {
	ID           int64              `json:"id"`
	Created      pgtype.Timestamptz `json:"created"`
	OperationIds []int64            `json:"operation_ids"`
}

func (q *Queries) ListTransfers(ctx context.Context, arg ListTransfersParams) ([]ListTransfersRow, error) {
	rows, err := q.db.Query(ctx, listTransfers, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListTransfersRow
	for rows.Next() {
		var i ListTransfersRow
		if err := rows.Scan(&i.ID, &i.Created, &i.OperationIds); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const transferExists = `-- name: TransferExists :one
SELECT EXISTS(SELECT 1 FROM transfers WHERE id = $1)
`

func (q *Queries) TransferExists(ctx context.Context, id int64) (bool, error) {
	row := q.db.QueryRow(ctx, transferExists, id)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}
