package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jdholdren/quill/internal/quill"
)

// CreateUser inserts the user. A username collision is left to the primary
// key to catch so two racing registrations can't both win.
func (r Repo) CreateUser(ctx context.Context, usr quill.User) (quill.User, error) {
	const q = `INSERT INTO users (username, password, email, first_name, last_name)
	VALUES (:username, :password, :email, :first_name, :last_name);`

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, q, usr)
		switch constraintCode(err) {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("user %q: %w", usr.Username, quill.ErrDuplicateUsername)
		}
		if err != nil {
			return fmt.Errorf("error inserting user: %w", err)
		}

		return nil
	})
	if err != nil {
		return quill.User{}, err
	}

	return usr, nil
}

func (r Repo) User(ctx context.Context, username string) (quill.User, error) {
	const q = `SELECT username, password, email, first_name, last_name FROM users WHERE username = ?;`

	var usr quill.User
	err := r.db.GetContext(ctx, &usr, q, username)
	if errors.Is(err, sql.ErrNoRows) {
		return quill.User{}, quill.ErrNotFound
	}
	if err != nil {
		return quill.User{}, fmt.Errorf("error fetching user: %w", err)
	}

	return usr, nil
}

// DeleteUser removes the user and their feedback in one transaction. The
// foreign key cascades too, but the explicit delete keeps the behavior the
// same if the pragma is ever missing.
func (r Repo) DeleteUser(ctx context.Context, username string) error {
	const (
		feedbackQ = `DELETE FROM feedback WHERE username = ?;`
		userQ     = `DELETE FROM users WHERE username = ?;`
	)

	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, feedbackQ, username); err != nil {
			return fmt.Errorf("error deleting user feedback: %w", err)
		}

		res, err := tx.ExecContext(ctx, userQ, username)
		if err != nil {
			return fmt.Errorf("error deleting user: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("error counting deleted users: %w", err)
		}
		if n == 0 {
			return quill.ErrNotFound
		}

		return nil
	})
}
