package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/keylock"
	"github.com/iho/cashledger/internal/usecase"
	"github.com/iho/cashledger/internal/usecase/mocks"
)

type fixture struct {
	ops       *mocks.MockOperationRepository
	transfers *mocks.MockTransferRepository
	directory *mocks.MockAccountDirectory
	txManager *mocks.MockTransactionManager
	tx        *mocks.MockTransaction
	uc        *usecase.TransactionUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		ops:       mocks.NewMockOperationRepository(ctrl),
		transfers: mocks.NewMockTransferRepository(ctrl),
		directory: mocks.NewMockAccountDirectory(ctrl),
		txManager: mocks.NewMockTransactionManager(ctrl),
		tx:        mocks.NewMockTransaction(ctrl),
	}
	f.uc = usecase.NewTransactionUseCase(f.txManager, f.ops, f.transfers, f.directory, keylock.New())

	return f
}

func (f *fixture) accounts(currencies map[string]string) {
	f.directory.EXPECT().Exists(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string) (bool, error) {
			_, ok := currencies[id]
			return ok, nil
		}).AnyTimes()
	f.directory.EXPECT().CurrencyOf(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string) (string, error) {
			return currencies[id], nil
		}).AnyTimes()
}

// expectTx expects one transaction that is committed when commit is true.
func (f *fixture) expectTx(commit bool) {
	f.txManager.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
	if commit {
		f.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	}
	f.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func saved(op *domain.Operation, id int64) *domain.Operation {
	cp := *op
	cp.ID = id
	cp.Created = time.Now().UTC()
	return &cp
}

func assertKind(t *testing.T, err error, kind domain.ErrorKind) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := domain.KindOf(err); got != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, got, err)
	}
}

func TestTransactionUseCase_CashIn(t *testing.T) {
	tests := []struct {
		name       string
		account    string
		amount     decimal.Decimal
		setupMocks func(f *fixture)
		expectKind domain.ErrorKind
	}{
		{
			name:    "records a debit",
			account: "A",
			amount:  dec("100"),
			setupMocks: func(f *fixture) {
				f.ops.EXPECT().Insert(gomock.Any(), nil, gomock.Any()).DoAndReturn(
					func(_ context.Context, _ usecase.Transaction, op *domain.Operation) (*domain.Operation, error) {
						if op.IsCredit() || !op.Amount().Equal(dec("100")) || op.Account != "A" {
							t.Errorf("expected debit of 100 on A, got %+v", op)
						}
						return saved(op, 1), nil
					})
			},
		},
		{
			name:       "unknown account",
			account:    "ghost",
			amount:     dec("100"),
			setupMocks: func(f *fixture) {},
			expectKind: domain.KindAccountNotFound,
		},
		{
			name:       "zero amount",
			account:    "A",
			amount:     decimal.Zero,
			setupMocks: func(f *fixture) {},
			expectKind: domain.KindInvalidAmount,
		},
		{
			name:       "negative amount",
			account:    "A",
			amount:     dec("-5"),
			setupMocks: func(f *fixture) {},
			expectKind: domain.KindInvalidAmount,
		},
		{
			name:       "amount finer than the stored scale",
			account:    "A",
			amount:     dec("0.0000000000000000001"),
			setupMocks: func(f *fixture) {},
			expectKind: domain.KindInvalidAmount,
		},
		{
			name:       "amount beyond the stored precision",
			account:    "A",
			amount:     dec("100000000000000000000"),
			setupMocks: func(f *fixture) {},
			expectKind: domain.KindInvalidAmount,
		},
		{
			name:    "store failure",
			account: "A",
			amount:  dec("1"),
			setupMocks: func(f *fixture) {
				f.ops.EXPECT().Insert(gomock.Any(), nil, gomock.Any()).Return(nil, errors.New("disk full"))
			},
			expectKind: domain.KindStorageError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.accounts(map[string]string{"A": "USD"})
			tt.setupMocks(f)

			op, err := f.uc.CashIn(context.Background(), usecase.CashInInput{Account: tt.account, Amount: tt.amount})

			if tt.expectKind != "" {
				assertKind(t, err, tt.expectKind)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if op.ID != 1 {
				t.Errorf("expected operation id 1, got %d", op.ID)
			}
		})
	}
}

func TestTransactionUseCase_Withdraw(t *testing.T) {
	t.Run("sufficient balance", func(t *testing.T) {
		f := newFixture(t)
		f.accounts(map[string]string{"A": "USD"})
		f.expectTx(true)

		gomock.InOrder(
			f.ops.EXPECT().AccountBalance(gomock.Any(), f.tx, "A").Return(dec("100"), nil),
			f.ops.EXPECT().Insert(gomock.Any(), f.tx, gomock.Any()).DoAndReturn(
				func(_ context.Context, _ usecase.Transaction, op *domain.Operation) (*domain.Operation, error) {
					if !op.IsCredit() || !op.Amount().Equal(dec("10")) {
						t.Errorf("expected credit of 10, got %+v", op)
					}
					return saved(op, 2), nil
				}),
		)

		op, err := f.uc.Withdraw(context.Background(), usecase.WithdrawInput{Account: "A", Amount: dec("10")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if op.ID != 2 {
			t.Errorf("expected operation id 2, got %d", op.ID)
		}
	})

	t.Run("exact balance is allowed", func(t *testing.T) {
		f := newFixture(t)
		f.accounts(map[string]string{"A": "USD"})
		f.expectTx(true)

		f.ops.EXPECT().AccountBalance(gomock.Any(), f.tx, "A").Return(dec("10.00"), nil)
		f.ops.EXPECT().Insert(gomock.Any(), f.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, op *domain.Operation) (*domain.Operation, error) {
				return saved(op, 3), nil
			})

		if _, err := f.uc.Withdraw(context.Background(), usecase.WithdrawInput{Account: "A", Amount: dec("10")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("insufficient funds writes nothing", func(t *testing.T) {
		f := newFixture(t)
		f.accounts(map[string]string{"A": "USD"})
		f.expectTx(false)

		f.ops.EXPECT().AccountBalance(gomock.Any(), f.tx, "A").Return(dec("9.99"), nil)

		_, err := f.uc.Withdraw(context.Background(), usecase.WithdrawInput{Account: "A", Amount: dec("10")})
		assertKind(t, err, domain.KindInsufficientFunds)
	})

	t.Run("invalid amount is rejected before locking", func(t *testing.T) {
		f := newFixture(t)
		f.accounts(map[string]string{"A": "USD"})

		_, err := f.uc.Withdraw(context.Background(), usecase.WithdrawInput{Account: "A", Amount: dec("0")})
		assertKind(t, err, domain.KindInvalidAmount)
	})

	t.Run("begin failure", func(t *testing.T) {
		f := newFixture(t)
		f.accounts(map[string]string{"A": "USD"})
		f.txManager.EXPECT().Begin(gomock.Any()).Return(nil, errors.New("pool exhausted"))

		_, err := f.uc.Withdraw(context.Background(), usecase.WithdrawInput{Account: "A", Amount: dec("1")})
		assertKind(t, err, domain.KindStorageError)
	})
}

func TestTransactionUseCase_Balance(t *testing.T) {
	f := newFixture(t)
	f.accounts(map[string]string{"A": "USD"})

	f.ops.EXPECT().AccountBalance(gomock.Any(), nil, "A").Return(decimal.Zero, nil)

	balance, err := f.uc.Balance(context.Background(), "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("expected zero balance, got %s", balance)
	}

	_, err = f.uc.Balance(context.Background(), "ghost")
	assertKind(t, err, domain.KindAccountNotFound)
}

func TestTransactionUseCase_Transfer(t *testing.T) {
	currencies := map[string]string{"A": "USD", "B": "USD", "E": "EUR"}

	t.Run("writes credit, debit and group in order", func(t *testing.T) {
		f := newFixture(t)
		f.accounts(currencies)
		f.expectTx(true)

		created := time.Now().UTC()
		gomock.InOrder(
			f.ops.EXPECT().AccountBalance(gomock.Any(), f.tx, "A").Return(dec("100"), nil),
			f.ops.EXPECT().Insert(gomock.Any(), f.tx, gomock.Any()).DoAndReturn(
				func(_ context.Context, _ usecase.Transaction, op *domain.Operation) (*domain.Operation, error) {
					if op.Account != "A" || !op.IsCredit() {
						t.Errorf("expected credit on A first, got %+v", op)
					}
					return saved(op, 10), nil
				}),
			f.ops.EXPECT().Insert(gomock.Any(), f.tx, gomock.Any()).DoAndReturn(
				func(_ context.Context, _ usecase.Transaction, op *domain.Operation) (*domain.Operation, error) {
					if op.Account != "B" || op.IsCredit() {
						t.Errorf("expected debit on B second, got %+v", op)
					}
					return saved(op, 11), nil
				}),
			f.transfers.EXPECT().Insert(gomock.Any(), f.tx, int64(10), int64(11)).Return(
				&domain.Transfer{ID: 5, Created: created, OperationIDs: []int64{10, 11}}, nil),
		)

		view, err := f.uc.Transfer(context.Background(), usecase.TransferInput{From: "A", To: "B", Amount: dec("50")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if view.ID != 5 || view.AccountFrom != "A" || view.AccountTo != "B" || !view.Amount.Equal(dec("50")) {
			t.Errorf("unexpected view %+v", view)
		}
	})

	rejections := []struct {
		name  string
		input usecase.TransferInput
		kind  domain.ErrorKind
	}{
		{name: "unknown source", input: usecase.TransferInput{From: "X", To: "B", Amount: dec("1")}, kind: domain.KindAccountNotFound},
		{name: "unknown destination", input: usecase.TransferInput{From: "A", To: "X", Amount: dec("1")}, kind: domain.KindAccountNotFound},
		{name: "negative amount", input: usecase.TransferInput{From: "A", To: "B", Amount: dec("-1")}, kind: domain.KindInvalidAmount},
		{name: "same account", input: usecase.TransferInput{From: "A", To: "A", Amount: dec("1")}, kind: domain.KindSameAccount},
		{name: "currency mismatch", input: usecase.TransferInput{From: "A", To: "E", Amount: dec("1")}, kind: domain.KindCurrencyMismatch},
	}

	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.accounts(currencies)

			_, err := f.uc.Transfer(context.Background(), tt.input)
			assertKind(t, err, tt.kind)
		})
	}

	t.Run("insufficient funds writes nothing", func(t *testing.T) {
		f := newFixture(t)
		f.accounts(currencies)
		f.expectTx(false)

		f.ops.EXPECT().AccountBalance(gomock.Any(), f.tx, "A").Return(dec("49.99"), nil)

		_, err := f.uc.Transfer(context.Background(), usecase.TransferInput{From: "A", To: "B", Amount: dec("50")})
		assertKind(t, err, domain.KindInsufficientFunds)
	})

	t.Run("failure on group insert rolls back", func(t *testing.T) {
		f := newFixture(t)
		f.accounts(currencies)
		f.expectTx(false)

		f.ops.EXPECT().AccountBalance(gomock.Any(), f.tx, "A").Return(dec("100"), nil)
		f.ops.EXPECT().Insert(gomock.Any(), f.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, op *domain.Operation) (*domain.Operation, error) {
				return saved(op, 1), nil
			}).Times(2)
		f.transfers.EXPECT().Insert(gomock.Any(), f.tx, gomock.Any(), gomock.Any()).Return(nil, errors.New("constraint violated"))

		_, err := f.uc.Transfer(context.Background(), usecase.TransferInput{From: "A", To: "B", Amount: dec("50")})
		assertKind(t, err, domain.KindStorageError)
	})
}

func TestTransactionUseCase_FindAll(t *testing.T) {
	t.Run("negative window", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.FindAll(context.Background(), -1, 0)
		assertKind(t, err, domain.KindInvalidPage)

		_, err = f.uc.FindAll(context.Background(), 10, -1)
		assertKind(t, err, domain.KindInvalidPage)
	})

	t.Run("zero limit skips the store", func(t *testing.T) {
		f := newFixture(t)

		views, err := f.uc.FindAll(context.Background(), 0, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(views) != 0 {
			t.Errorf("expected empty page, got %d", len(views))
		}
	})

	t.Run("skips transfers deleted mid-page", func(t *testing.T) {
		f := newFixture(t)

		f.transfers.EXPECT().FindAll(gomock.Any(), 1, 0).Return([]*domain.Transfer{
			{ID: 1, OperationIDs: []int64{1, 2}},
		}, nil)
		f.ops.EXPECT().GetByID(gomock.Any(), nil, int64(1)).Return(nil, domain.ErrOperationNotFound)

		views, err := f.uc.FindAll(context.Background(), 1, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(views) != 0 {
			t.Errorf("expected empty page, got %d", len(views))
		}
	})

	t.Run("projection ignores storage order", func(t *testing.T) {
		f := newFixture(t)

		credit := saved(domain.NewCredit("A", dec("7")), 1)
		debit := saved(domain.NewDebit("B", dec("7")), 2)

		f.transfers.EXPECT().FindAll(gomock.Any(), 2, 0).Return([]*domain.Transfer{
			{ID: 1, OperationIDs: []int64{1, 2}},
			{ID: 2, OperationIDs: []int64{2, 1}},
		}, nil)
		f.ops.EXPECT().GetByID(gomock.Any(), nil, int64(1)).Return(credit, nil).Times(2)
		f.ops.EXPECT().GetByID(gomock.Any(), nil, int64(2)).Return(debit, nil).Times(2)

		views, err := f.uc.FindAll(context.Background(), 2, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, v := range views {
			if v.AccountFrom != "A" || v.AccountTo != "B" || !v.Amount.Equal(dec("7")) {
				t.Errorf("unexpected projection %+v", v)
			}
		}
	})
}

func TestTransactionUseCase_Delete(t *testing.T) {
	credit := saved(domain.NewCredit("A", dec("50")), 10)
	debit := saved(domain.NewDebit("B", dec("50")), 11)
	transfer := &domain.Transfer{ID: 3, OperationIDs: []int64{10, 11}}

	expectLookup := func(f *fixture) {
		f.transfers.EXPECT().GetByID(gomock.Any(), nil, int64(3)).Return(transfer, nil)
		f.ops.EXPECT().GetByID(gomock.Any(), nil, int64(10)).Return(credit, nil)
		f.ops.EXPECT().GetByID(gomock.Any(), nil, int64(11)).Return(debit, nil)
	}

	t.Run("deletes operations then the group", func(t *testing.T) {
		f := newFixture(t)
		expectLookup(f)
		f.expectTx(true)

		gomock.InOrder(
			f.transfers.EXPECT().IsExist(gomock.Any(), f.tx, int64(3)).Return(true, nil),
			f.ops.EXPECT().AccountBalance(gomock.Any(), f.tx, "B").Return(dec("50"), nil),
			f.ops.EXPECT().DeleteByID(gomock.Any(), f.tx, int64(10)).Return(nil),
			f.ops.EXPECT().DeleteByID(gomock.Any(), f.tx, int64(11)).Return(nil),
			f.transfers.EXPECT().DeleteByID(gomock.Any(), f.tx, int64(3)).Return(nil),
		)

		if err := f.uc.Delete(context.Background(), 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unknown transfer", func(t *testing.T) {
		f := newFixture(t)
		f.transfers.EXPECT().GetByID(gomock.Any(), nil, int64(99)).Return(nil, domain.ErrTransferNotFound)

		err := f.uc.Delete(context.Background(), 99)
		assertKind(t, err, domain.KindTransferNotFound)
	})

	t.Run("deleted concurrently", func(t *testing.T) {
		f := newFixture(t)
		expectLookup(f)
		f.expectTx(false)

		f.transfers.EXPECT().IsExist(gomock.Any(), f.tx, int64(3)).Return(false, nil)

		err := f.uc.Delete(context.Background(), 3)
		assertKind(t, err, domain.KindTransferNotFound)
	})

	t.Run("destination already spent the money", func(t *testing.T) {
		f := newFixture(t)
		expectLookup(f)
		f.expectTx(false)

		f.transfers.EXPECT().IsExist(gomock.Any(), f.tx, int64(3)).Return(true, nil)
		f.ops.EXPECT().AccountBalance(gomock.Any(), f.tx, "B").Return(dec("20"), nil)

		err := f.uc.Delete(context.Background(), 3)
		assertKind(t, err, domain.KindInsufficientFunds)
	})

	t.Run("operations vanished before the lock", func(t *testing.T) {
		f := newFixture(t)
		f.transfers.EXPECT().GetByID(gomock.Any(), nil, int64(3)).Return(transfer, nil)
		f.ops.EXPECT().GetByID(gomock.Any(), nil, int64(10)).Return(nil, domain.ErrOperationNotFound)

		err := f.uc.Delete(context.Background(), 3)
		assertKind(t, err, domain.KindTransferNotFound)
	})
}

func TestTransactionUseCase_RetriesWholeTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	ops := mocks.NewMockOperationRepository(ctrl)
	directory := mocks.NewMockAccountDirectory(ctrl)
	txManager := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	retrier := mocks.NewMockRetrier(ctrl)

	directory.EXPECT().Exists(gomock.Any(), "A").Return(true, nil)
	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, operation func() error) error {
			if err := operation(); err == nil {
				t.Fatal("expected first attempt to fail")
			}
			return operation()
		})

	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil).Times(2)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	tx.EXPECT().Commit(gomock.Any()).Return(errors.New("serialization failure"))
	tx.EXPECT().Commit(gomock.Any()).Return(nil)
	ops.EXPECT().AccountBalance(gomock.Any(), tx, "A").Return(dec("5"), nil).Times(2)
	ops.EXPECT().Insert(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ usecase.Transaction, op *domain.Operation) (*domain.Operation, error) {
			return saved(op, 1), nil
		}).Times(2)

	uc := usecase.NewTransactionUseCase(txManager, ops, nil, directory, keylock.New(), usecase.WithRetrier(retrier))

	if _, err := uc.Withdraw(context.Background(), usecase.WithdrawInput{Account: "A", Amount: dec("5")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
