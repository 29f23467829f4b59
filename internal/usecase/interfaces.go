package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// OperationRepository is the operation ledger. Methods taking a nil
// Transaction run outside of any transaction.
type OperationRepository interface {
	Insert(ctx context.Context, tx Transaction, op *domain.Operation) (*domain.Operation, error)
	GetByID(ctx context.Context, tx Transaction, id int64) (*domain.Operation, error)
	AccountBalance(ctx context.Context, tx Transaction, account string) (decimal.Decimal, error)
	ListByAccount(ctx context.Context, account string, limit, offset int) ([]*domain.Operation, error)
	DeleteByID(ctx context.Context, tx Transaction, id int64) error
}

// TransferRepository stores the grouping of operation pairs into transfers.
type TransferRepository interface {
	Insert(ctx context.Context, tx Transaction, fromOpID, toOpID int64) (*domain.Transfer, error)
	GetByID(ctx context.Context, tx Transaction, id int64) (*domain.Transfer, error)
	IsExist(ctx context.Context, tx Transaction, id int64) (bool, error)
	FindAll(ctx context.Context, limit, offset int) ([]*domain.Transfer, error)
	DeleteByID(ctx context.Context, tx Transaction, id int64) error
}

// AccountDirectory resolves accounts owned by an external system.
type AccountDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
	CurrencyOf(ctx context.Context, id string) (string, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs a whole transaction after a transient store conflict.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Locker serializes work per account.
type Locker interface {
	Lock(key string) func()
	LockAll(keys ...string) func()
}

// ErrCacheMiss is returned by Cache.Get for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyInFlight is the value an IdempotencyStore holds under a key
// while the first request with that key is still running.
const IdempotencyInFlight = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete successfully.
	Release(ctx context.Context, key string) error
}

// Recorder receives ledger telemetry.
type Recorder interface {
	OperationRecorded(kind string)
	RequestRejected(kind domain.ErrorKind)
	ObserveTransfer(d time.Duration)
	ObserveLockWait(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) OperationRecorded(string)         {}
func (nopRecorder) RequestRejected(domain.ErrorKind) {}
func (nopRecorder) ObserveTransfer(time.Duration)    {}
func (nopRecorder) ObserveLockWait(time.Duration)    {}
