package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/usecase"
)

// AmountRequest is the body of cash-in and withdraw requests.
// Amounts travel as strings so no precision is lost in JSON.
type AmountRequest struct {
	Amount string `json:"amount"`
}

// ToUseCaseInput converts to use case input for account.
func (r *AmountRequest) ToUseCaseInput(account string) (usecase.CashInInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.CashInInput{}, err
	}

	return usecase.CashInInput{
		Account: account,
		Amount:  amount,
	}, nil
}

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() (usecase.TransferInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.TransferInput{}, err
	}

	return usecase.TransferInput{
		From:   r.From,
		To:     r.To,
		Amount: amount,
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	return amount, nil
}
