package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jdholdren/quill/internal/quill"
)

var feedbackColumns = []string{"id", "title", "content", "username"}

func (r Repo) CreateFeedback(ctx context.Context, title, content, owner string) (quill.Feedback, error) {
	const q = `INSERT INTO feedback (title, content, username) VALUES (?, ?, ?);`

	fb := quill.Feedback{
		Title:    title,
		Content:  content,
		Username: owner,
	}
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, q, title, content, owner)
		if constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return fmt.Errorf("owner %q: %w", owner, quill.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("error inserting feedback: %w", err)
		}

		fb.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("error reading feedback id: %w", err)
		}

		return nil
	})
	if err != nil {
		return quill.Feedback{}, err
	}

	return fb, nil
}

func (r Repo) Feedback(ctx context.Context, id int64) (quill.Feedback, error) {
	return feedbackByID(ctx, r.db, id)
}

// Works against both the db and a transaction.
func feedbackByID(ctx context.Context, q sqlx.QueryerContext, id int64) (quill.Feedback, error) {
	query, args, err := sq.Select(feedbackColumns...).From("feedback").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return quill.Feedback{}, fmt.Errorf("error constructing sql: %w", err)
	}

	var fb quill.Feedback
	err = sqlx.GetContext(ctx, q, &fb, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return quill.Feedback{}, quill.ErrNotFound
	}
	if err != nil {
		return quill.Feedback{}, fmt.Errorf("error fetching feedback: %w", err)
	}

	return fb, nil
}

// FeedbackByOwner lists a user's feedback, oldest first.
func (r Repo) FeedbackByOwner(ctx context.Context, username string) ([]quill.Feedback, error) {
	query, args, err := sq.Select(feedbackColumns...).
		From("feedback").
		Where(sq.Eq{"username": username}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	feedback := []quill.Feedback{}
	if err := r.db.SelectContext(ctx, &feedback, query, args...); err != nil {
		return nil, fmt.Errorf("error fetching feedback for user: %w", err)
	}

	return feedback, nil
}

func (r Repo) UpdateFeedback(ctx context.Context, id int64, title, content string) (quill.Feedback, error) {
	query, args, err := sq.Update("feedback").
		Set("title", title).
		Set("content", content).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return quill.Feedback{}, fmt.Errorf("error constructing sql: %w", err)
	}

	var fb quill.Feedback
	err = r.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("error updating feedback: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("error counting updated feedback: %w", err)
		} else if n == 0 {
			return quill.ErrNotFound
		}

		fb, err = feedbackByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return quill.Feedback{}, err
	}

	return fb, nil
}

func (r Repo) DeleteFeedback(ctx context.Context, id int64) error {
	const q = `DELETE FROM feedback WHERE id = ?;`

	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, q, id)
		if err != nil {
			return fmt.Errorf("error deleting feedback: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("error counting deleted feedback: %w", err)
		}
		if n == 0 {
			return quill.ErrNotFound
		}

		return nil
	})
}
