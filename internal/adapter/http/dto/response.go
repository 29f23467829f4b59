package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/domain"
)

// OperationResponse represents an operation in API responses.
type OperationResponse struct {
	ID      int64            `json:"id"`
	Account string           `json:"account"`
	Debit   *decimal.Decimal `json:"debit,omitempty"`
	Credit  *decimal.Decimal `json:"credit,omitempty"`
	Created time.Time        `json:"created"`
}

// OperationFromDomain converts a domain operation to response.
func OperationFromDomain(o *domain.Operation) *OperationResponse {
	return &OperationResponse{
		ID:      o.ID,
		Account: o.Account,
		Debit:   o.Debit,
		Credit:  o.Credit,
		Created: o.Created,
	}
}

// OperationsFromDomain converts domain operations to responses.
func OperationsFromDomain(ops []*domain.Operation) []*OperationResponse {
	result := make([]*OperationResponse, len(ops))
	for i, o := range ops {
		result[i] = OperationFromDomain(o)
	}
	return result
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID          int64           `json:"id"`
	AccountFrom string          `json:"accountFrom"`
	AccountTo   string          `json:"accountTo"`
	Amount      decimal.Decimal `json:"amount"`
	Created     time.Time       `json:"created"`
}

// TransferFromDomain converts a transfer view to response.
func TransferFromDomain(t *domain.TransferView) *TransferResponse {
	return &TransferResponse{
		ID:          t.ID,
		AccountFrom: t.AccountFrom,
		AccountTo:   t.AccountTo,
		Amount:      t.Amount,
		Created:     t.Created,
	}
}

// TransfersFromDomain converts transfer views to responses.
func TransfersFromDomain(transfers []*domain.TransferView) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// BalanceResponse is the derived balance of one account.
type BalanceResponse struct {
	Account string          `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

// PrincipalResponse describes the authenticated caller.
type PrincipalResponse struct {
	Subject string      `json:"subject"`
	Role    domain.Role `json:"role"`
}

// ErrorResponse represents an error in API responses.
// Timestamp is in Unix milliseconds.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Kind      string `json:"kind,omitempty"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// NewErrorResponse stamps an error body with the current time.
func NewErrorResponse(code int, kind, message string) ErrorResponse {
	return ErrorResponse{
		Code:      code,
		Kind:      kind,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}
}
