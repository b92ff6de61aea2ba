// Package repository implements the MySQL persistence layer.  All
// methods hang off Store and accept a context; inside WithTx the
// context carries the open *sql.Tx, so the same method works both
// standalone and as part of an atomic unit.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// Store wraps the database handle and exposes the persistence
// operations of the booking engine.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the provided database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB { return s.db }

type txKey struct{}

// maxTxAttempts bounds the deadlock retry loop: the original attempt
// plus two retries before the conflict is surfaced.
const maxTxAttempts = 3

// WithTx runs fn inside a transaction carried through the context.
// Nested calls join the outer transaction.  InnoDB can abort one of
// two transactions contending for the same tier row with a deadlock or
// lock-wait-timeout error; those are transparently retried up to two
// times before being surfaced as model.ErrConflict.  Business errors
// returned by fn roll the transaction back and propagate unchanged.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		err = fn(context.WithValue(ctx, txKey{}, tx))
		if err == nil {
			err = tx.Commit()
			if err == nil {
				return nil
			}
		} else {
			_ = tx.Rollback()
		}
		if !isLockConflict(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("transaction retries exhausted: %v: %w", lastErr, model.ErrConflict)
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q returns the transaction from the context when present, otherwise
// the plain database handle.
func (s *Store) q(ctx context.Context) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

// isLockConflict reports whether err is a MySQL deadlock (1213) or
// lock wait timeout (1205), the two retryable serialization failures.
func isLockConflict(err error) bool {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return false
	}
	return myErr.Number == 1213 || myErr.Number == 1205
}

// isDuplicateKey reports whether err is a MySQL duplicate-key error
// (1062), raised when an insert collides with a unique index.
func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
