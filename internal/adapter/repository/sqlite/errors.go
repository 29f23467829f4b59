package sqlite

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// IsRetryableError reports whether err is a lock conflict after which the
// whole transaction may be re-run.
func IsRetryableError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}
