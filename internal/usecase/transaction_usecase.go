package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/domain"
)

// TransactionUseCase records cash-ins, withdrawals and transfers and is the
// only component allowed to write to the ledger.
type TransactionUseCase struct {
	txManager     TransactionManager
	operationRepo OperationRepository
	transferRepo  TransferRepository
	directory     AccountDirectory
	locker        Locker
	retrier       Retrier
	recorder      Recorder
	logger        zerolog.Logger
}

// Option configures a TransactionUseCase.
type Option func(*TransactionUseCase)

// WithRetrier re-runs transactions that failed on a transient store conflict.
func WithRetrier(r Retrier) Option {
	return func(uc *TransactionUseCase) { uc.retrier = r }
}

// WithRecorder reports ledger telemetry to r.
func WithRecorder(r Recorder) Option {
	return func(uc *TransactionUseCase) { uc.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(uc *TransactionUseCase) { uc.logger = l }
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	operationRepo OperationRepository,
	transferRepo TransferRepository,
	directory AccountDirectory,
	locker Locker,
	opts ...Option,
) *TransactionUseCase {
	uc := &TransactionUseCase{
		txManager:     txManager,
		operationRepo: operationRepo,
		transferRepo:  transferRepo,
		directory:     directory,
		locker:        locker,
		retrier:       onceRetrier{},
		recorder:      nopRecorder{},
		logger:        zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// CashInInput represents input for cash-in and withdrawal.
type CashInInput struct {
	Account string
	Amount  decimal.Decimal
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput = CashInInput

// TransferInput represents input for creating a transfer.
type TransferInput struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// CashIn records money entering an account from outside the ledger.
// It takes no lock: a cash-in can only raise the balance.
func (uc *TransactionUseCase) CashIn(ctx context.Context, input CashInInput) (*domain.Operation, error) {
	if err := uc.requireAccount(ctx, input.Account); err != nil {
		return nil, uc.reject(err)
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, uc.reject(err)
	}

	op, err := uc.operationRepo.Insert(ctx, nil, domain.NewDebit(input.Account, input.Amount))
	if err != nil {
		return nil, uc.reject(domain.StorageError("cash-in", err))
	}

	uc.recorder.OperationRecorded(OperationCashIn)
	uc.logger.Info().
		Str("account", op.Account).
		Str("amount", input.Amount.String()).
		Int64("operation_id", op.ID).
		Msg("cash-in recorded")

	return op, nil
}

// Withdraw takes money out of an account. The balance check and the insert
// run under the account lock so two withdrawals can never both spend the
// same funds.
func (uc *TransactionUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*domain.Operation, error) {
	if err := uc.requireAccount(ctx, input.Account); err != nil {
		return nil, uc.reject(err)
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, uc.reject(err)
	}

	unlock := uc.lock(input.Account)
	defer unlock()

	var op *domain.Operation
	err := uc.inTransaction(ctx, "withdraw", func(tx Transaction) error {
		if err := uc.ensureFunds(ctx, tx, input.Account, input.Amount); err != nil {
			return err
		}

		var err error
		op, err = uc.operationRepo.Insert(ctx, tx, domain.NewCredit(input.Account, input.Amount))
		return err
	})
	if err != nil {
		return nil, uc.reject(err)
	}

	uc.recorder.OperationRecorded(OperationWithdraw)
	uc.logger.Info().
		Str("account", op.Account).
		Str("amount", input.Amount.String()).
		Int64("operation_id", op.ID).
		Msg("withdrawal recorded")

	return op, nil
}

// Balance returns the current balance of an account. It is an advisory
// snapshot and takes no lock.
func (uc *TransactionUseCase) Balance(ctx context.Context, account string) (decimal.Decimal, error) {
	if err := uc.requireAccount(ctx, account); err != nil {
		return decimal.Zero, uc.reject(err)
	}

	balance, err := uc.operationRepo.AccountBalance(ctx, nil, account)
	if err != nil {
		return decimal.Zero, uc.reject(domain.StorageError("balance", err))
	}

	return balance, nil
}

// Transfer moves amount between two accounts of the same currency. The credit
// on the source, the debit on the destination and the transfer row are
// written in one store transaction under the source account lock.
func (uc *TransactionUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.TransferView, error) {
	start := time.Now()

	if err := uc.requireAccount(ctx, input.From); err != nil {
		return nil, uc.reject(err)
	}

	if err := uc.requireAccount(ctx, input.To); err != nil {
		return nil, uc.reject(err)
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, uc.reject(err)
	}

	if input.From == input.To {
		return nil, uc.reject(domain.NewError(domain.ErrSameAccount, "cannot transfer from %s to itself", input.From))
	}

	if err := uc.requireSameCurrency(ctx, input.From, input.To); err != nil {
		return nil, uc.reject(err)
	}

	unlock := uc.lock(input.From)
	defer unlock()

	var view *domain.TransferView
	err := uc.inTransaction(ctx, "transfer", func(tx Transaction) error {
		if err := uc.ensureFunds(ctx, tx, input.From, input.Amount); err != nil {
			return err
		}

		fromOp, err := uc.operationRepo.Insert(ctx, tx, domain.NewCredit(input.From, input.Amount))
		if err != nil {
			return err
		}

		toOp, err := uc.operationRepo.Insert(ctx, tx, domain.NewDebit(input.To, input.Amount))
		if err != nil {
			return err
		}

		transfer, err := uc.transferRepo.Insert(ctx, tx, fromOp.ID, toOp.ID)
		if err != nil {
			return err
		}

		view, err = domain.NewTransferView(transfer, fromOp, toOp)
		return err
	})
	if err != nil {
		return nil, uc.reject(err)
	}

	uc.recorder.OperationRecorded(OperationTransfer)
	uc.recorder.ObserveTransfer(time.Since(start))
	uc.logger.Info().
		Int64("transfer_id", view.ID).
		Str("from", view.AccountFrom).
		Str("to", view.AccountTo).
		Str("amount", view.Amount.String()).
		Msg("transfer recorded")

	return view, nil
}

// FindAll returns a page of transfers in ascending id order.
func (uc *TransactionUseCase) FindAll(ctx context.Context, limit, offset int) ([]*domain.TransferView, error) {
	if err := domain.ValidatePagination(limit, offset); err != nil {
		return nil, uc.reject(err)
	}

	if limit == 0 {
		return []*domain.TransferView{}, nil
	}

	transfers, err := uc.transferRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, uc.reject(domain.StorageError("list transfers", err))
	}

	views := make([]*domain.TransferView, 0, len(transfers))
	for _, t := range transfers {
		view, _, err := uc.project(ctx, nil, t)
		if errors.Is(err, domain.ErrOperationNotFound) {
			// deleted after the page was read
			continue
		}
		if err != nil {
			return nil, uc.reject(domain.StorageError("list transfers", err))
		}
		views = append(views, view)
	}

	return views, nil
}

// GetTransfer returns a single transfer.
func (uc *TransactionUseCase) GetTransfer(ctx context.Context, id int64) (*domain.TransferView, error) {
	view, _, err := uc.loadTransfer(ctx, id)
	if err != nil {
		return nil, uc.reject(err)
	}

	return view, nil
}

// Delete erases a transfer and both of its operations, as if it never
// happened. The locks of both accounts are held for the whole deletion so no
// withdrawal can check a balance the deletion is about to change.
//
// Deletion is refused with InsufficientFunds when the destination has
// already spent the money, since erasing its debit would leave it negative.
func (uc *TransactionUseCase) Delete(ctx context.Context, id int64) error {
	view, ops, err := uc.loadTransfer(ctx, id)
	if err != nil {
		return uc.reject(err)
	}

	unlock := uc.lock(view.AccountFrom, view.AccountTo)
	defer unlock()

	err = uc.inTransaction(ctx, "delete transfer", func(tx Transaction) error {
		exists, err := uc.transferRepo.IsExist(ctx, tx, id)
		if err != nil {
			return err
		}
		if !exists {
			return domain.NewError(domain.ErrTransferNotFound, "Transfer %d doesn't exist", id)
		}

		if err := uc.ensureFunds(ctx, tx, view.AccountTo, view.Amount); err != nil {
			return err
		}

		for _, op := range ops {
			if err := uc.operationRepo.DeleteByID(ctx, tx, op.ID); err != nil {
				return err
			}
		}

		return uc.transferRepo.DeleteByID(ctx, tx, id)
	})
	if err != nil {
		return uc.reject(err)
	}

	uc.recorder.OperationRecorded(OperationDelete)
	uc.logger.Info().
		Int64("transfer_id", id).
		Str("from", view.AccountFrom).
		Str("to", view.AccountTo).
		Str("amount", view.Amount.String()).
		Msg("transfer deleted")

	return nil
}

// Statement lists the operations of an account in ascending id order.
func (uc *TransactionUseCase) Statement(ctx context.Context, account string, limit, offset int) ([]*domain.Operation, error) {
	if err := uc.requireAccount(ctx, account); err != nil {
		return nil, uc.reject(err)
	}

	if err := domain.ValidatePagination(limit, offset); err != nil {
		return nil, uc.reject(err)
	}

	if limit == 0 {
		return []*domain.Operation{}, nil
	}

	ops, err := uc.operationRepo.ListByAccount(ctx, account, limit, offset)
	if err != nil {
		return nil, uc.reject(domain.StorageError("statement", err))
	}

	return ops, nil
}

func (uc *TransactionUseCase) requireAccount(ctx context.Context, id string) error {
	exists, err := uc.directory.Exists(ctx, id)
	if err != nil {
		return domain.StorageError("account lookup", err)
	}

	if !exists {
		return domain.NewError(domain.ErrAccountNotFound, "Account %s doesn't exist", id)
	}

	return nil
}

func (uc *TransactionUseCase) requireSameCurrency(ctx context.Context, from, to string) error {
	fromCurrency, err := uc.directory.CurrencyOf(ctx, from)
	if err != nil {
		return domain.StorageError("currency lookup", err)
	}

	toCurrency, err := uc.directory.CurrencyOf(ctx, to)
	if err != nil {
		return domain.StorageError("currency lookup", err)
	}

	fromAccount := &domain.Account{ID: from, Currency: fromCurrency}
	if !fromAccount.SameCurrency(&domain.Account{ID: to, Currency: toCurrency}) {
		return domain.NewError(domain.ErrCurrencyMismatch, "Accounts with different currencies")
	}

	return nil
}

// ensureFunds must run under the lock of account.
func (uc *TransactionUseCase) ensureFunds(ctx context.Context, tx Transaction, account string, amount decimal.Decimal) error {
	balance, err := uc.operationRepo.AccountBalance(ctx, tx, account)
	if err != nil {
		return err
	}

	if balance.LessThan(amount) {
		return domain.NewError(domain.ErrInsufficientFunds, "There is no enough money on %s", account)
	}

	return nil
}

// project loads both operations of t and flattens them.
func (uc *TransactionUseCase) project(ctx context.Context, tx Transaction, t *domain.Transfer) (*domain.TransferView, []*domain.Operation, error) {
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}

	ops := make([]*domain.Operation, 0, len(t.OperationIDs))
	for _, opID := range t.OperationIDs {
		op, err := uc.operationRepo.GetByID(ctx, tx, opID)
		if err != nil {
			return nil, nil, err
		}
		ops = append(ops, op)
	}

	view, err := domain.NewTransferView(t, ops[0], ops[1])
	if err != nil {
		return nil, nil, err
	}

	return view, ops, nil
}

// loadTransfer reads a transfer outside any lock. A transfer whose
// operations vanish between the two reads was deleted concurrently and is
// reported as not found.
func (uc *TransactionUseCase) loadTransfer(ctx context.Context, id int64) (*domain.TransferView, []*domain.Operation, error) {
	transfer, err := uc.transferRepo.GetByID(ctx, nil, id)
	if err == nil {
		var (
			view *domain.TransferView
			ops  []*domain.Operation
		)
		view, ops, err = uc.project(ctx, nil, transfer)
		if err == nil {
			return view, ops, nil
		}
	}

	if errors.Is(err, domain.ErrTransferNotFound) || errors.Is(err, domain.ErrOperationNotFound) {
		return nil, nil, domain.NewError(domain.ErrTransferNotFound, "Transfer %d doesn't exist", id)
	}
	return nil, nil, domain.StorageError("transfer lookup", err)
}

func (uc *TransactionUseCase) lock(accounts ...string) func() {
	start := time.Now()
	unlock := uc.locker.LockAll(accounts...)
	uc.recorder.ObserveLockWait(time.Since(start))
	return unlock
}

// inTransaction runs fn in a store transaction, re-running the whole
// transaction on transient conflicts. Domain errors returned by fn pass
// through untouched; everything else becomes a StorageError.
func (uc *TransactionUseCase) inTransaction(ctx context.Context, op string, fn func(tx Transaction) error) error {
	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

		if err := fn(tx); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err == nil || domain.IsDomainError(err) {
		return err
	}

	return domain.StorageError(op, err)
}

func (uc *TransactionUseCase) reject(err error) error {
	kind := domain.KindOf(err)
	uc.recorder.RequestRejected(kind)

	event := uc.logger.Debug()
	if kind == domain.KindStorageError {
		event = uc.logger.Error()
	}
	event.Err(err).Str("kind", string(kind)).Msg("ledger request rejected")

	return err
}

type onceRetrier struct{}

func (onceRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}
