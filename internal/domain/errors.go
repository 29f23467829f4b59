package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, machine-readable category of a ledger failure.
type ErrorKind string

const (
	KindAccountNotFound   ErrorKind = "AccountNotFound"
	KindTransferNotFound  ErrorKind = "TransferNotFound"
	KindCurrencyMismatch  ErrorKind = "CurrencyMismatch"
	KindInsufficientFunds ErrorKind = "InsufficientFunds"
	KindInvalidAmount     ErrorKind = "InvalidAmount"
	KindInvalidPage       ErrorKind = "InvalidPage"
	KindSameAccount       ErrorKind = "SameAccount"
	KindStorageError      ErrorKind = "StorageError"
)

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Transfer errors
	ErrSameAccount       = errors.New("cannot transfer to same account")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrCurrencyMismatch  = errors.New("cannot transfer between different currencies")
	ErrTransferNotFound  = errors.New("transfer not found")
	ErrMalformedTransfer = errors.New("transfer must link exactly one credit and one debit operation")

	// Ledger errors
	ErrOperationNotFound = errors.New("operation not found")
	ErrInvalidOperation  = errors.New("operation must carry exactly one of debit or credit")
	ErrInvalidPage       = errors.New("limit and offset must not be negative")
	ErrStorage           = errors.New("storage failure")
)

var sentinelKinds = map[error]ErrorKind{
	ErrAccountNotFound:   KindAccountNotFound,
	ErrInsufficientFunds: KindInsufficientFunds,
	ErrSameAccount:       KindSameAccount,
	ErrInvalidAmount:     KindInvalidAmount,
	ErrCurrencyMismatch:  KindCurrencyMismatch,
	ErrTransferNotFound:  KindTransferNotFound,
	ErrInvalidPage:       KindInvalidPage,
	ErrStorage:           KindStorageError,
}

// Error is a ledger failure tagged with its kind.
//
// Err is the sentinel the failure matches under errors.Is; Cause, when set,
// is the underlying error (for example the driver error behind a StorageError).
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewError tags sentinel with a formatted message.
func NewError(sentinel error, format string, args ...any) *Error {
	return &Error{
		Kind:    kindOfSentinel(sentinel),
		Message: fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}

// StorageError wraps a store failure.
func StorageError(op string, cause error) *Error {
	return &Error{
		Kind:    KindStorageError,
		Message: op + " failed",
		Err:     ErrStorage,
		Cause:   cause,
	}
}

// KindOf reports the kind of err. Errors that carry no domain kind are
// storage failures from the caller's point of view.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}

	for sentinel, kind := range sentinelKinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}

	return KindStorageError
}

// IsDomainError reports whether err is a validation failure detected before
// any write, as opposed to a storage failure.
func IsDomainError(err error) bool {
	kind := KindOf(err)
	return kind != "" && kind != KindStorageError
}

func kindOfSentinel(sentinel error) ErrorKind {
	if kind, ok := sentinelKinds[sentinel]; ok {
		return kind
	}
	return KindStorageError
}
