package directory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iho/cashledger/internal/domain"
)

type fileAccount struct {
	Number   string `yaml:"number"`
	Currency string `yaml:"currency"`
}

type fileLayout struct {
	Accounts []fileAccount `yaml:"accounts"`
}

// LoadFile reads a YAML directory of the form
//
//	accounts:
//	  - number: "40817810000000000001"
//	    currency: USD
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read account directory: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML directory. Every account needs a number and a valid
// ISO 4217 currency; numbers must be unique.
func Parse(data []byte) (*Static, error) {
	var layout fileLayout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse account directory: %w", err)
	}

	seen := make(map[string]bool, len(layout.Accounts))
	accounts := make([]domain.Account, 0, len(layout.Accounts))
	for i, a := range layout.Accounts {
		if a.Number == "" {
			return nil, fmt.Errorf("account #%d: missing number", i+1)
		}
		if seen[a.Number] {
			return nil, fmt.Errorf("account %s: listed twice", a.Number)
		}
		if err := domain.ValidateCurrency(a.Currency); err != nil {
			return nil, fmt.Errorf("account %s: %w", a.Number, err)
		}

		seen[a.Number] = true
		accounts = append(accounts, domain.Account{ID: a.Number, Currency: a.Currency})
	}

	return NewStatic(accounts), nil
}
