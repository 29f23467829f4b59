package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/postgres/generated"
	"github.com/iho/cashledger/internal/usecase"
)

// OperationRepository implements usecase.OperationRepository.
type OperationRepository struct {
	queries *generated.Queries
}

// NewOperationRepository creates a new OperationRepository. db is usually a
// *pgxpool.Pool.
func NewOperationRepository(db generated.DBTX) *OperationRepository {
	return &OperationRepository{queries: generated.New(db)}
}

// Insert stores op and returns it with its id and creation time.
func (r *OperationRepository) Insert(ctx context.Context, tx usecase.Transaction, op *domain.Operation) (*domain.Operation, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}

	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.CreateOperation(ctx, generated.CreateOperationParams{
		Account: op.Account,
		Debit:   optionalDecimalToNumeric(op.Debit),
		Credit:  optionalDecimalToNumeric(op.Credit),
	})
	if err != nil {
		return nil, err
	}

	return rowToOperation(row), nil
}

// GetByID retrieves an operation by ID.
func (r *OperationRepository) GetByID(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Operation, error) {
	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetOperationByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}

		return nil, err
	}

	return rowToOperation(row), nil
}

// AccountBalance returns SUM(debit) - SUM(credit) for account.
func (r *OperationRepository) AccountBalance(ctx context.Context, tx usecase.Transaction, account string) (decimal.Decimal, error) {
	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := queries.GetAccountBalance(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(balance), nil
}

// ListByAccount lists operations for an account.
func (r *OperationRepository) ListByAccount(ctx context.Context, account string, limit, offset int) ([]*domain.Operation, error) {
	lim, off, err := pageWindow(limit, offset)
	if err != nil {
		return nil, err
	}

	rows, err := r.queries.ListOperationsByAccount(ctx, generated.ListOperationsByAccountParams{
		Account: account,
		Limit:   lim,
		Offset:  off,
	})
	if err != nil {
		return nil, err
	}

	ops := make([]*domain.Operation, 0, len(rows))
	for _, row := range rows {
		ops = append(ops, rowToOperation(row))
	}

	return ops, nil
}

// DeleteByID removes an operation. Its transfer_operations row goes with it.
func (r *OperationRepository) DeleteByID(ctx context.Context, tx usecase.Transaction, id int64) error {
	queries, err := queriesFor(r.queries, tx)
	if err != nil {
		return err
	}

	deleted, err := queries.DeleteOperation(ctx, id)
	if err != nil {
		return err
	}

	if deleted == 0 {
		return domain.ErrOperationNotFound
	}

	return nil
}
