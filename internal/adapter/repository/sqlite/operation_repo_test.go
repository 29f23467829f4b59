package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cashledger/internal/domain"
)

func TestOperationRepository_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewOperationRepository(newTestDB(t))

	first, err := repo.Insert(ctx, nil, domain.NewDebit("A", decimal.RequireFromString("10.25")))
	require.NoError(t, err)
	second, err := repo.Insert(ctx, nil, domain.NewCredit("A", decimal.RequireFromString("0.25")))
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)
	assert.False(t, first.Created.IsZero())

	got, err := repo.GetByID(ctx, nil, second.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCredit())
	assert.Nil(t, got.Debit)
	assert.True(t, got.Amount().Equal(decimal.RequireFromString("0.25")))
	assert.True(t, got.Created.Equal(second.Created))

	_, err = repo.GetByID(ctx, nil, 999)
	assert.ErrorIs(t, err, domain.ErrOperationNotFound)
}

func TestOperationRepository_BalanceIsExact(t *testing.T) {
	ctx := context.Background()
	repo := NewOperationRepository(newTestDB(t))

	balance, err := repo.AccountBalance(ctx, nil, "A")
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "empty account must have zero balance")

	for i := 0; i < 3; i++ {
		_, err := repo.Insert(ctx, nil, domain.NewDebit("A", decimal.RequireFromString("0.1")))
		require.NoError(t, err)
	}
	_, err = repo.Insert(ctx, nil, domain.NewCredit("A", decimal.RequireFromString("0.3")))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, nil, domain.NewDebit("B", decimal.RequireFromString("5")))
	require.NoError(t, err)

	balance, err = repo.AccountBalance(ctx, nil, "A")
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "expected exactly zero, got %s", balance)
}

func TestOperationRepository_ListByAccount(t *testing.T) {
	ctx := context.Background()
	repo := NewOperationRepository(newTestDB(t))

	for i := 1; i <= 5; i++ {
		_, err := repo.Insert(ctx, nil, domain.NewDebit("A", decimal.NewFromInt(int64(i))))
		require.NoError(t, err)
	}

	page, err := repo.ListByAccount(ctx, "A", 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].Amount().Equal(decimal.NewFromInt(2)))
	assert.True(t, page[1].Amount().Equal(decimal.NewFromInt(3)))

	empty, err := repo.ListByAccount(ctx, "B", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOperationRepository_RejectsOperationWithBothSides(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.ExecContext(ctx,
		`INSERT INTO operations (account, debit, credit, created) VALUES ('A', '1', '1', 0)`)
	assert.Error(t, err, "schema must enforce exactly one of debit or credit")

	repo := NewOperationRepository(db)
	amount := decimal.NewFromInt(1)
	_, err = repo.Insert(ctx, nil, &domain.Operation{Account: "A", Debit: &amount, Credit: &amount})
	assert.True(t, errors.Is(err, domain.ErrInvalidOperation))
}

func TestOperationRepository_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewOperationRepository(db)
	manager := NewTxManager(db)

	tx, err := manager.Begin(ctx)
	require.NoError(t, err)

	_, err = repo.Insert(ctx, tx, domain.NewDebit("A", decimal.NewFromInt(100)))
	require.NoError(t, err)

	inTx, err := repo.AccountBalance(ctx, tx, "A")
	require.NoError(t, err)
	assert.True(t, inTx.Equal(decimal.NewFromInt(100)))

	require.NoError(t, tx.Rollback(ctx))

	after, err := repo.AccountBalance(ctx, nil, "A")
	require.NoError(t, err)
	assert.True(t, after.IsZero())

	assert.NoError(t, tx.Rollback(ctx), "second rollback must be a no-op")
}
