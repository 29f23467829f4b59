package postgres

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/postgres/generated"
)

// pageWindow narrows a page window to the int32 the queries take.
func pageWindow(limit, offset int) (int32, int32, error) {
	if err := domain.ValidatePagination(limit, offset); err != nil {
		return 0, 0, err
	}
	return int32(limit), int32(offset), nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func optionalDecimalToNumeric(d *decimal.Decimal) pgtype.Numeric {
	if d == nil {
		return pgtype.Numeric{}
	}
	return decimalToNumeric(*d)
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func numericToOptionalDecimal(n pgtype.Numeric) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := numericToDecimal(n)
	return &d
}

func rowToOperation(row generated.Operation) *domain.Operation {
	return &domain.Operation{
		ID:      row.ID,
		Account: row.Account,
		Debit:   numericToOptionalDecimal(row.Debit),
		Credit:  numericToOptionalDecimal(row.Credit),
		Created: row.Created.Time,
	}
}
