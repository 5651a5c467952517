package tx

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Within runs fn in a transaction, committing on success and rolling back on
// error or panic.
func Within(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) (err error) {
	txn, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = txn.Rollback()
			panic(p)
		}
		if err != nil {
			_ = txn.Rollback()
		}
	}()
	if err = fn(txn); err != nil {
		return err
	}
	if err = txn.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
