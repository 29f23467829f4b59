package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation is a single signed movement against one account.
//
// Exactly one of Debit and Credit is set. A debit increases the account
// balance, a credit decreases it.
type Operation struct {
	Created time.Time
	Debit   *decimal.Decimal
	Credit  *decimal.Decimal
	Account string
	ID      int64
}

// NewDebit returns an unsaved operation increasing account by amount.
func NewDebit(account string, amount decimal.Decimal) *Operation {
	return &Operation{Account: account, Debit: &amount}
}

// NewCredit returns an unsaved operation decreasing account by amount.
func NewCredit(account string, amount decimal.Decimal) *Operation {
	return &Operation{Account: account, Credit: &amount}
}

// Validate checks the one-of-debit-or-credit invariant.
func (o *Operation) Validate() error {
	if (o.Debit == nil) == (o.Credit == nil) {
		return ErrInvalidOperation
	}

	if o.Amount().IsNegative() {
		return ErrInvalidOperation
	}

	return nil
}

// IsCredit reports whether the operation decreases its account.
func (o *Operation) IsCredit() bool {
	return o.Credit != nil
}

// Amount returns the absolute amount of the movement.
func (o *Operation) Amount() decimal.Decimal {
	switch {
	case o.Credit != nil:
		return *o.Credit
	case o.Debit != nil:
		return *o.Debit
	default:
		return decimal.Zero
	}
}

// Signed returns the effect of the operation on its account balance.
func (o *Operation) Signed() decimal.Decimal {
	if o.IsCredit() {
		return o.Credit.Neg()
	}
	return o.Amount()
}

// Balance sums the signed effect of ops. It is the in-process equivalent of
// SUM(debit) - SUM(credit).
func Balance(ops []*Operation) decimal.Decimal {
	balance := decimal.Zero
	for _, op := range ops {
		balance = balance.Add(op.Signed())
	}
	return balance
}
