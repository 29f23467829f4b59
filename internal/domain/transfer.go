package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer groups the two operations of one balanced movement.
// OperationIDs is ordered [from, to] as written by the coordinator.
type Transfer struct {
	Created      time.Time
	OperationIDs []int64
	ID           int64
}

// Validate checks that the transfer links exactly two distinct operations.
func (t *Transfer) Validate() error {
	if len(t.OperationIDs) != 2 || t.OperationIDs[0] == t.OperationIDs[1] {
		return ErrMalformedTransfer
	}
	return nil
}

// TransferView is the flattened representation of a transfer.
type TransferView struct {
	Created     time.Time
	ID          int64
	AccountFrom string
	AccountTo   string
	Amount      decimal.Decimal
}

// NewTransferView projects a transfer and its two operations.
//
// The side carrying a credit is the source, the side carrying a debit is the
// destination; the order in which a and b are passed does not matter.
func NewTransferView(t *Transfer, a, b *Operation) (*TransferView, error) {
	if a == nil || b == nil || a.IsCredit() == b.IsCredit() {
		return nil, ErrMalformedTransfer
	}

	from, to := a, b
	if !a.IsCredit() {
		from, to = b, a
	}

	return &TransferView{
		ID:          t.ID,
		Created:     t.Created,
		AccountFrom: from.Account,
		AccountTo:   to.Account,
		Amount:      from.Amount(),
	}, nil
}
