package dto

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAmountRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name        string
		amount      string
		want        decimal.Decimal
		expectError bool
	}{
		{name: "integer", amount: "100", want: decimal.NewFromInt(100)},
		{name: "fraction", amount: "0.015", want: decimal.RequireFromString("0.015")},
		// validation of sign is the coordinator's job
		{name: "negative passes through", amount: "-5", want: decimal.NewFromInt(-5)},
		{name: "empty", amount: "", expectError: true},
		{name: "garbage", amount: "ten", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &AmountRequest{Amount: tt.amount}
			got, err := req.ToUseCaseInput("USD123")

			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Account != "USD123" {
				t.Fatalf("expected account USD123, got %s", got.Account)
			}
			if !got.Amount.Equal(tt.want) {
				t.Fatalf("expected amount %s, got %s", tt.want, got.Amount)
			}
		})
	}
}

func TestCreateTransferRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateTransferRequest{From: "USD123", To: "USD456", Amount: "12.34"}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.From != "USD123" || got.To != "USD456" {
		t.Fatalf("ToUseCaseInput() = %+v", got)
	}
	if !got.Amount.Equal(decimal.RequireFromString("12.34")) {
		t.Fatalf("expected amount 12.34, got %s", got.Amount)
	}

	bad := &CreateTransferRequest{From: "USD123", To: "USD456", Amount: "1,5"}
	if _, err := bad.ToUseCaseInput(); err == nil {
		t.Fatalf("expected error for malformed amount")
	}
}
