package domain

import "strings"

// Account is the directory view of an account: an opaque number and the
// currency its operations are denominated in. The ledger never creates or
// modifies accounts.
type Account struct {
	ID       string
	Currency string
}

// SameCurrency reports whether both accounts hold the same currency.
func (a *Account) SameCurrency(other *Account) bool {
	return strings.EqualFold(a.Currency, other.Currency)
}
