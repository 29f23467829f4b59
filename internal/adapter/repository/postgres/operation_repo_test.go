package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/domain"
)

var operationColumns = []string{"id", "account", "debit", "credit", "created"}

func numeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	return decimalToNumeric(decimal.RequireFromString(s))
}

func TestOperationRepositoryInsertInTransaction(t *testing.T) {
	mockPool := newMockPool(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mockPool.ExpectBegin()
	mockPool.ExpectQuery("INSERT INTO operations").
		WithArgs("A", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(operationColumns).
			AddRow(int64(7), "A", pgtype.Numeric{}, numeric(t, "12.50"), pgtype.Timestamptz{Time: created, Valid: true}))
	mockPool.ExpectCommit()

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	repo := NewOperationRepository(mockPool)
	op, err := repo.Insert(context.Background(), tx, domain.NewCredit("A", decimal.RequireFromString("12.50")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if op.ID != 7 || !op.IsCredit() || !op.Amount().Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected operation %+v", op)
	}
	if op.Debit != nil {
		t.Fatalf("expected NULL debit to map to nil")
	}
	if !op.Created.Equal(created) {
		t.Fatalf("expected created %v, got %v", created, op.Created)
	}

	assertExpectations(t, mockPool)
}

func TestOperationRepositoryInsertRejectsInvalidOperation(t *testing.T) {
	repo := NewOperationRepository(newMockPool(t))

	_, err := repo.Insert(context.Background(), nil, &domain.Operation{Account: "A"})
	if !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("expected invalid operation, got %v", err)
	}
}

func TestOperationRepositoryGetByIDNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM operations").
		WithArgs(int64(42)).
		WillReturnError(pgx.ErrNoRows)

	repo := NewOperationRepository(mockPool)
	if _, err := repo.GetByID(context.Background(), nil, 42); !errors.Is(err, domain.ErrOperationNotFound) {
		t.Fatalf("expected operation not found, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestOperationRepositoryAccountBalance(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("AS balance").
		WithArgs("A").
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(numeric(t, "-0.30")))

	repo := NewOperationRepository(mockPool)
	balance, err := repo.AccountBalance(context.Background(), nil, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !balance.Equal(decimal.RequireFromString("-0.3")) {
		t.Fatalf("expected -0.3, got %s", balance)
	}

	assertExpectations(t, mockPool)
}

func TestOperationRepositoryListByAccount(t *testing.T) {
	mockPool := newMockPool(t)
	now := pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
	mockPool.ExpectQuery("FROM operations").
		WithArgs("A", int32(10), int32(0)).
		WillReturnRows(pgxmock.NewRows(operationColumns).
			AddRow(int64(1), "A", numeric(t, "100"), pgtype.Numeric{}, now).
			AddRow(int64(3), "A", pgtype.Numeric{}, numeric(t, "40"), now))

	repo := NewOperationRepository(mockPool)
	ops, err := repo.ListByAccount(context.Background(), "A", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ops) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(ops))
	}
	if !domain.Balance(ops).Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected statement to sum to 60, got %s", domain.Balance(ops))
	}

	assertExpectations(t, mockPool)
}

func TestOperationRepositoryListByAccountRejectsOversizedWindow(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewOperationRepository(mockPool)

	if _, err := repo.ListByAccount(context.Background(), "A", 1<<32+1, 0); !errors.Is(err, domain.ErrInvalidPage) {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestOperationRepositoryDeleteByID(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectExec("DELETE FROM operations").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mockPool.ExpectExec("DELETE FROM operations").
		WithArgs(int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewOperationRepository(mockPool)
	if err := repo.DeleteByID(context.Background(), nil, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.DeleteByID(context.Background(), nil, 2); !errors.Is(err, domain.ErrOperationNotFound) {
		t.Fatalf("expected operation not found, got %v", err)
	}

	assertExpectations(t, mockPool)
}
