package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/postgres/generated"
	"github.com/iho/cashledger/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	queries *generated.Queries
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(db generated.DBTX) *TransferRepository {
	return &TransferRepository{queries: generated.New(db)}
}

// Insert groups two already stored operations under a new transfer id.
func (r *TransferRepository) Insert(ctx context.Context, tx usecase.Transaction, fromOpID, toOpID int64) (*domain.Transfer, error) {
	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.CreateTransfer(ctx)
	if err != nil {
		return nil, err
	}

	opIDs := []int64{fromOpID, toOpID}
	for position, opID := range opIDs {
		if err := queries.AddTransferOperation(ctx, generated.AddTransferOperationParams{
			TransferID:  row.ID,
			OperationID: opID,
			Position:    int16(position),
		}); err != nil {
			return nil, err
		}
	}

	return &domain.Transfer{
		ID:           row.ID,
		Created:      row.Created.Time,
		OperationIDs: opIDs,
	}, nil
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Transfer, error) {
	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetTransferByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	return &domain.Transfer{
		ID:           row.ID,
		Created:      row.Created.Time,
		OperationIDs: row.OperationIds,
	}, nil
}

// IsExist reports whether a transfer row with id exists.
func (r *TransferRepository) IsExist(ctx context.Context, tx usecase.Transaction, id int64) (bool, error) {
	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return false, err
	}

	return queries.TransferExists(ctx, id)
}

// FindAll lists transfers in ascending id order.
func (r *TransferRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Transfer, error) {
	lim, off, err := pageWindow(limit, offset)
	if err != nil {
		return nil, err
	}

	rows, err := r.queries.ListTransfers(ctx, generated.ListTransfersParams{
		Limit:  lim,
		Offset: off,
	})
	if err != nil {
		return nil, err
	}

	transfers := make([]*domain.Transfer, 0, len(rows))
	for _, row := range rows {
		transfers = append(transfers, &domain.Transfer{
			ID:           row.ID,
			Created:      row.Created.Time,
			OperationIDs: row.OperationIds,
		})
	}

	return transfers, nil
}

// DeleteByID removes the join rows and the transfer row. The operations are
// left to the caller.
func (r *TransferRepository) DeleteByID(ctx context.Context, tx usecase.Transaction, id int64) error {
	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return err
	}

	if err := queries.DeleteTransferOperations(ctx, id); err != nil {
		return err
	}

	deleted, err := queries.DeleteTransfer(ctx, id)
	if err != nil {
		return err
	}

	if deleted == 0 {
		return domain.ErrTransferNotFound
	}

	return nil
}
