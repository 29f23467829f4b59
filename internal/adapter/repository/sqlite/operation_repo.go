package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// OperationRepository implements usecase.OperationRepository.
//
// Amounts are stored as decimal strings and summed in Go: SQLite arithmetic
// is floating point.
type OperationRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewOperationRepository creates a new OperationRepository.
func NewOperationRepository(db *sql.DB) *OperationRepository {
	return &OperationRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Insert stores op and returns it with its id and creation time.
func (r *OperationRepository) Insert(ctx context.Context, tx usecase.Transaction, op *domain.Operation) (*domain.Operation, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}

	q, err := querierFor(r.db, tx)
	if err != nil {
		return nil, err
	}

	created := r.now()
	res, err := q.ExecContext(ctx,
		`INSERT INTO operations (account, debit, credit, created) VALUES (?, ?, ?, ?)`,
		op.Account, decimalToText(op.Debit), decimalToText(op.Credit), created.UnixNano())
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	saved := *op
	saved.ID = id
	saved.Created = created

	return &saved, nil
}

// GetByID retrieves an operation by ID.
func (r *OperationRepository) GetByID(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Operation, error) {
	q, err := querierFor(r.db, tx)
	if err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx,
		`SELECT id, account, debit, credit, created FROM operations WHERE id = ?`, id)

	op, err := scanOperation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}
		return nil, err
	}

	return op, nil
}

// AccountBalance returns SUM(debit) - SUM(credit) for account.
func (r *OperationRepository) AccountBalance(ctx context.Context, tx usecase.Transaction, account string) (decimal.Decimal, error) {
	q, err := querierFor(r.db, tx)
	if err != nil {
		return decimal.Zero, err
	}

	rows, err := q.QueryContext(ctx, `SELECT debit, credit FROM operations WHERE account = ?`, account)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	balance := decimal.Zero
	for rows.Next() {
		var debit, credit sql.NullString
		if err := rows.Scan(&debit, &credit); err != nil {
			return decimal.Zero, err
		}

		amount, err := signedAmount(debit, credit)
		if err != nil {
			return decimal.Zero, err
		}
		balance = balance.Add(amount)
	}

	if err := rows.Err(); err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// ListByAccount lists operations for an account.
func (r *OperationRepository) ListByAccount(ctx context.Context, account string, limit, offset int) ([]*domain.Operation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account, debit, credit, created FROM operations
		 WHERE account = ? ORDER BY id LIMIT ? OFFSET ?`,
		account, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []*domain.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ops, nil
}

// DeleteByID removes an operation. Its transfer_operations row goes with it.
func (r *OperationRepository) DeleteByID(ctx context.Context, tx usecase.Transaction, id int64) error {
	q, err := querierFor(r.db, tx)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `DELETE FROM operations WHERE id = ?`, id)
	if err != nil {
		return err
	}

	return requireAffected(res, domain.ErrOperationNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperation(row rowScanner) (*domain.Operation, error) {
	var (
		op            domain.Operation
		debit, credit sql.NullString
		created       int64
	)

	if err := row.Scan(&op.ID, &op.Account, &debit, &credit, &created); err != nil {
		return nil, err
	}
	op.Created = fromUnixNano(created)

	var err error
	if op.Debit, err = textToDecimal(debit); err != nil {
		return nil, err
	}
	if op.Credit, err = textToDecimal(credit); err != nil {
		return nil, err
	}

	return &op, nil
}

func decimalToText(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func textToDecimal(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid {
		return nil, nil
	}

	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount %q: %w", s.String, err)
	}

	return &d, nil
}

func signedAmount(debit, credit sql.NullString) (decimal.Decimal, error) {
	if debit.Valid {
		d, err := textToDecimal(debit)
		if err != nil {
			return decimal.Zero, err
		}
		return *d, nil
	}

	c, err := textToDecimal(credit)
	if err != nil || c == nil {
		return decimal.Zero, err
	}
	return c.Neg(), nil
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return notFound
	}

	return nil
}
