package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/iho/cashledger/internal/domain"
)

func TestAccountDirectory(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT EXISTS").
		WithArgs("ACC-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mockPool.ExpectQuery("FROM accounts").
		WithArgs("ACC-1").
		WillReturnRows(pgxmock.NewRows([]string{"number", "currency"}).AddRow("ACC-1", "EUR"))
	mockPool.ExpectQuery("FROM accounts").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	dir := NewAccountDirectory(mockPool)

	exists, err := dir.Exists(context.Background(), "ACC-1")
	if err != nil || !exists {
		t.Fatalf("expected account to exist, got exists=%v err=%v", exists, err)
	}

	currency, err := dir.CurrencyOf(context.Background(), "ACC-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if currency != "EUR" {
		t.Fatalf("expected EUR, got %s", currency)
	}

	if _, err := dir.CurrencyOf(context.Background(), "ghost"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}

	assertExpectations(t, mockPool)
}
