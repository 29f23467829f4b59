package sqlite

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cashledger/internal/domain"
)

func insertPair(t *testing.T, ops *OperationRepository, transfers *TransferRepository, from, to string, amount int64) *domain.Transfer {
	t.Helper()
	ctx := context.Background()

	credit, err := ops.Insert(ctx, nil, domain.NewCredit(from, decimal.NewFromInt(amount)))
	require.NoError(t, err)
	debit, err := ops.Insert(ctx, nil, domain.NewDebit(to, decimal.NewFromInt(amount)))
	require.NoError(t, err)

	transfer, err := transfers.Insert(ctx, nil, credit.ID, debit.ID)
	require.NoError(t, err)

	return transfer
}

func TestTransferRepository_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ops := NewOperationRepository(db)
	transfers := NewTransferRepository(db)

	created := insertPair(t, ops, transfers, "A", "B", 10)

	got, err := transfers.GetByID(ctx, nil, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.OperationIDs, got.OperationIDs)
	assert.True(t, got.Created.Equal(created.Created))
	assert.NoError(t, got.Validate())

	exists, err := transfers.IsExist(ctx, nil, created.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = transfers.GetByID(ctx, nil, created.ID+1)
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)
}

func TestTransferRepository_OperationBelongsToOneTransfer(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ops := NewOperationRepository(db)
	transfers := NewTransferRepository(db)

	first := insertPair(t, ops, transfers, "A", "B", 10)

	_, err := transfers.Insert(ctx, nil, first.OperationIDs[0], first.OperationIDs[1])
	assert.Error(t, err, "an operation must not join two transfers")
}

func TestTransferRepository_FindAllPages(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ops := NewOperationRepository(db)
	transfers := NewTransferRepository(db)

	for i := 1; i <= 5; i++ {
		insertPair(t, ops, transfers, "A", "B", int64(i))
	}

	var seen []int64
	for offset := 0; offset < 6; offset += 2 {
		page, err := transfers.FindAll(ctx, 2, offset)
		require.NoError(t, err)
		for _, tr := range page {
			require.Len(t, tr.OperationIDs, 2)
			seen = append(seen, tr.ID)
		}
	}

	require.Len(t, seen, 5)
	for i := 1; i < len(seen); i++ {
		assert.Less(t, seen[i-1], seen[i])
	}
}

func TestTransferRepository_DeleteCascade(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ops := NewOperationRepository(db)
	transfers := NewTransferRepository(db)
	manager := NewTxManager(db)

	transfer := insertPair(t, ops, transfers, "A", "B", 10)

	tx, err := manager.Begin(ctx)
	require.NoError(t, err)
	for _, id := range transfer.OperationIDs {
		require.NoError(t, ops.DeleteByID(ctx, tx, id))
	}
	require.NoError(t, transfers.DeleteByID(ctx, tx, transfer.ID))
	require.NoError(t, tx.Commit(ctx))

	exists, err := transfers.IsExist(ctx, nil, transfer.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	var joinRows int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transfer_operations`).Scan(&joinRows))
	assert.Zero(t, joinRows)

	assert.ErrorIs(t, transfers.DeleteByID(ctx, nil, transfer.ID), domain.ErrTransferNotFound)
}
