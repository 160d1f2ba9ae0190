package migrations_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/quill/internal/migrations"
	"github.com/jdholdren/quill/internal/sqlite"
)

func TestRunIsRepeatable(t *testing.T) {
	dbx, err := sqlite.Open(filepath.Join(t.TempDir(), "quill.db"))
	require.NoError(t, err)
	defer dbx.Close()

	require.NoError(t, migrations.Run(dbx))
	require.NoError(t, migrations.Run(dbx))

	var tables []string
	require.NoError(t, dbx.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'feedback') ORDER BY name;`))
	assert.Equal(t, []string{"feedback", "users"}, tables)
}

func TestFeedbackFollowsItsUser(t *testing.T) {
	dbx, err := sqlite.Open(filepath.Join(t.TempDir(), "quill.db"))
	require.NoError(t, err)
	defer dbx.Close()
	require.NoError(t, migrations.Run(dbx))

	var fks []struct {
		Table    string `db:"table"`
		From     string `db:"from"`
		To       string `db:"to"`
		OnDelete string `db:"on_delete"`
	}
	require.NoError(t, dbx.Select(&fks, `SELECT "table", "from", "to", on_delete FROM pragma_foreign_key_list('feedback');`))
	require.Len(t, fks, 1)
	assert.Equal(t, "users", fks[0].Table)
	assert.Equal(t, "username", fks[0].From)
	assert.Equal(t, "username", fks[0].To)
	assert.Equal(t, "CASCADE", fks[0].OnDelete)

	dbx.MustExec(`INSERT INTO users (username, password, email, first_name, last_name) VALUES ('alice', 'x', 'a@example.com', 'A', 'L');`)
	dbx.MustExec(`INSERT INTO feedback (title, content, username) VALUES ('Hi', 'Hello', 'alice'), ('Again', 'More', 'alice');`)

	// Feedback can't point at a user that doesn't exist
	_, err = dbx.Exec(`INSERT INTO feedback (title, content, username) VALUES ('Hi', 'Hello', 'nobody');`)
	assert.Error(t, err)

	dbx.MustExec(`DELETE FROM users WHERE username = 'alice';`)

	var count int
	require.NoError(t, dbx.Get(&count, `SELECT count(*) FROM feedback;`))
	assert.Zero(t, count)
}
