// Package sqlite implements the quill repositories on top of sqlx and the
// pure-go sqlite driver.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jdholdren/quill/internal/quill"
)

// Ensure Repo implements the Repository interface
var _ quill.Repository = (*Repo)(nil)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}

// DSN decorates a database path with the pragmas the repo relies on:
// immediate write locks so concurrent writers queue instead of failing
// mid-transaction, and foreign keys so feedback can't outlive its owner.
func DSN(path string) string {
	return fmt.Sprintf(
		"%s?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
		path,
	)
}

// Open connects to the sqlite database at path.
func Open(path string) (*sqlx.DB, error) {
	dbx, err := sqlx.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	return dbx, nil
}

// inTx runs fn inside a transaction. Any error from fn rolls everything back.
func (r Repo) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "error rolling back", "err", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

// constraintCode returns the extended sqlite result code when err is a
// constraint violation, zero otherwise.
func constraintCode(err error) int {
	sqliteErr := &sqlite.Error{}
	if !errors.As(err, &sqliteErr) {
		return 0
	}

	switch code := sqliteErr.Code(); code {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return code
	}

	return 0
}
