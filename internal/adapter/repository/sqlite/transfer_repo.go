package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Insert groups two already stored operations under a new transfer id.
func (r *TransferRepository) Insert(ctx context.Context, tx usecase.Transaction, fromOpID, toOpID int64) (*domain.Transfer, error) {
	q, err := querierFor(r.db, tx)
	if err != nil {
		return nil, err
	}

	created := r.now()
	res, err := q.ExecContext(ctx, `INSERT INTO transfers (created) VALUES (?)`, created.UnixNano())
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	opIDs := []int64{fromOpID, toOpID}
	for position, opID := range opIDs {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO transfer_operations (transfer_id, operation_id, position) VALUES (?, ?, ?)`,
			id, opID, position); err != nil {
			return nil, err
		}
	}

	return &domain.Transfer{ID: id, Created: created, OperationIDs: opIDs}, nil
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Transfer, error) {
	q, err := querierFor(r.db, tx)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT t.id, t.created, o.operation_id
		 FROM transfers t JOIN transfer_operations o ON o.transfer_id = t.id
		 WHERE t.id = ? ORDER BY o.position`, id)
	if err != nil {
		return nil, err
	}

	transfers, err := scanTransfers(rows)
	if err != nil {
		return nil, err
	}

	if len(transfers) == 0 {
		return nil, domain.ErrTransferNotFound
	}

	return transfers[0], nil
}

// IsExist reports whether a transfer row with id exists.
func (r *TransferRepository) IsExist(ctx context.Context, tx usecase.Transaction, id int64) (bool, error) {
	q, err := querierFor(r.db, tx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM transfers WHERE id = ?)`, id).Scan(&exists)

	return exists, err
}

// FindAll lists transfers in ascending id order.
func (r *TransferRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Transfer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.created, o.operation_id
		 FROM (SELECT id, created FROM transfers ORDER BY id LIMIT ? OFFSET ?) t
		 JOIN transfer_operations o ON o.transfer_id = t.id
		 ORDER BY t.id, o.position`, limit, offset)
	if err != nil {
		return nil, err
	}

	return scanTransfers(rows)
}

// DeleteByID removes the join rows and the transfer row. The operations are
// left to the caller.
func (r *TransferRepository) DeleteByID(ctx context.Context, tx usecase.Transaction, id int64) error {
	q, err := querierFor(r.db, tx)
	if err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM transfer_operations WHERE transfer_id = ?`, id); err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `DELETE FROM transfers WHERE id = ?`, id)
	if err != nil {
		return err
	}

	return requireAffected(res, domain.ErrTransferNotFound)
}

// scanTransfers folds (transfer, operation) rows ordered by transfer id into
// transfers and closes rows.
func scanTransfers(rows *sql.Rows) ([]*domain.Transfer, error) {
	defer rows.Close()

	var transfers []*domain.Transfer
	for rows.Next() {
		var (
			id, created, opID int64
		)
		if err := rows.Scan(&id, &created, &opID); err != nil {
			return nil, err
		}

		if n := len(transfers); n == 0 || transfers[n-1].ID != id {
			transfers = append(transfers, &domain.Transfer{ID: id, Created: fromUnixNano(created)})
		}

		last := transfers[len(transfers)-1]
		last.OperationIDs = append(last.OperationIDs, opID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transfers, nil
}
