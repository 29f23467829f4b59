package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/adapter/directory"
	sqliteRepo "github.com/iho/cashledger/internal/adapter/repository/sqlite"
	"github.com/iho/cashledger/internal/infrastructure/config"
	"github.com/iho/cashledger/internal/usecase"
)

func TestOpenDirectory_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	if err := os.WriteFile(path, []byte("accounts:\n  - number: USD123\n    currency: usd\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := &config.Config{DirectorySource: config.DirectoryFile, DirectoryFile: path}
	got, err := openDirectory(cfg, nil)
	if err != nil {
		t.Fatalf("openDirectory: %v", err)
	}

	static, ok := got.(*directory.Static)
	if !ok || static.Len() != 1 {
		t.Fatalf("expected a file directory with one account, got %T", got)
	}
}

func TestOpenDirectory_Table(t *testing.T) {
	table := directory.NewStatic(nil)
	cfg := &config.Config{DirectorySource: config.DirectorySQLite}

	got, err := openDirectory(cfg, table)
	if err != nil {
		t.Fatalf("openDirectory: %v", err)
	}
	if got != usecase.AccountDirectory(table) {
		t.Fatalf("expected the table directory to be used")
	}
}

func TestOpenStore_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		DatabaseDriver:  config.DriverSQLite,
		SQLitePath:      filepath.Join(t.TempDir(), "ledger.db"),
		DirectorySource: config.DirectorySQLite,
	}

	st, err := openStore(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer st.close()

	if err := st.ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	exists, err := st.directory.Exists(ctx, "USD123")
	if err != nil || exists {
		t.Fatalf("expected empty directory, got %v %v", exists, err)
	}

	balance, err := st.operationRepo.AccountBalance(ctx, nil, "USD123")
	if err != nil || !balance.Equal(decimal.Zero) {
		t.Fatalf("expected zero balance, got %s %v", balance, err)
	}

	if st.isRetryable == nil {
		t.Fatalf("expected a retry classifier")
	}
}

func TestOpenStore_SQLiteSeededDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	db, err := sqliteRepo.Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := sqliteRepo.PutAccount(ctx, db, "EUR1", "EUR"); err != nil {
		t.Fatalf("put account: %v", err)
	}
	db.Close()

	st, err := openStore(ctx, &config.Config{
		DatabaseDriver:  config.DriverSQLite,
		SQLitePath:      path,
		DirectorySource: config.DirectorySQLite,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer st.close()

	currency, err := st.directory.CurrencyOf(ctx, "EUR1")
	if err != nil || currency != "EUR" {
		t.Fatalf("expected EUR, got %q %v", currency, err)
	}
}
