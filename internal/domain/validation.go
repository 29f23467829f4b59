package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
}

// ErrInvalidCurrency is returned for currency codes outside ISO 4217.
var ErrInvalidCurrency = errors.New("invalid currency code")

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// AmountScale is the number of fractional digits an amount may carry. It
// matches the NUMERIC(38, 18) amount columns.
const AmountScale = 18

// MaxAmount is the exclusive upper bound of a single amount.
var MaxAmount = decimal.New(1, 38-AmountScale)

// MaxPageWindow bounds page limits and offsets to what every store accepts.
const MaxPageWindow = math.MaxInt32

// ValidateAmount rejects zero and negative amounts and amounts the stores
// cannot hold exactly.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return NewError(ErrInvalidAmount, "wrong amount %s", amount.String())
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return NewError(ErrInvalidAmount, "wrong amount %s: more than %d fractional digits", amount.String(), AmountScale)
	}
	if amount.GreaterThanOrEqual(MaxAmount) {
		return NewError(ErrInvalidAmount, "wrong amount %s: must be below %s", amount.String(), MaxAmount.String())
	}
	return nil
}

// ValidatePagination rejects negative or oversized page windows. A zero
// limit is a valid, empty page.
func ValidatePagination(limit, offset int) error {
	if limit < 0 || offset < 0 || limit > MaxPageWindow || offset > MaxPageWindow {
		return NewError(ErrInvalidPage, "invalid page limit=%d offset=%d", limit, offset)
	}
	return nil
}
