package domain

import "testing"

func TestAccount_SameCurrency(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		to       string
		expected bool
	}{
		{name: "equal codes", from: "USD", to: "USD", expected: true},
		{name: "case insensitive", from: "usd", to: "USD", expected: true},
		{name: "different codes", from: "USD", to: "EUR", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{ID: "A", Currency: tt.from}
			b := &Account{ID: "B", Currency: tt.to}

			if got := a.SameCurrency(b); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
