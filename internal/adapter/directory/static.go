// Package directory provides read-only account directories that do not live
// in the ledger database, and a caching decorator for any directory.
package directory

import (
	"context"
	"strings"

	"github.com/iho/cashledger/internal/domain"
)

// Static is an immutable in-memory directory.
type Static struct {
	accounts map[string]string
}

// NewStatic builds a directory from accounts. Currency codes are
// upper-cased; a later duplicate wins.
func NewStatic(accounts []domain.Account) *Static {
	m := make(map[string]string, len(accounts))
	for _, a := range accounts {
		m[a.ID] = strings.ToUpper(a.Currency)
	}
	return &Static{accounts: m}
}

// Exists reports whether id is a known account.
func (s *Static) Exists(_ context.Context, id string) (bool, error) {
	_, ok := s.accounts[id]
	return ok, nil
}

// CurrencyOf returns the currency of an account.
func (s *Static) CurrencyOf(_ context.Context, id string) (string, error) {
	currency, ok := s.accounts[id]
	if !ok {
		return "", domain.ErrAccountNotFound
	}
	return currency, nil
}

// Len returns the number of accounts.
func (s *Static) Len() int {
	return len(s.accounts)
}
