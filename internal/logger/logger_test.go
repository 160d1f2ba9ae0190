package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextAttrsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json", slog.LevelInfo)

	ctx := Ctx(context.Background(), slog.String("request_id", "abc"))
	ctx = Ctx(ctx, slog.String("username", "alice"))
	l.InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "abc", rec["request_id"])
	assert.Equal(t, "alice", rec["username"])
	assert.Equal(t, "hello", rec["msg"])
}

func TestCtxDoesNotLeakBetweenSiblings(t *testing.T) {
	base := Ctx(context.Background(), slog.String("a", "1"))
	left := Ctx(base, slog.String("b", "2"))
	right := Ctx(base, slog.String("c", "3"))

	assert.Len(t, Attrs(base), 1)
	assert.Equal(t, "b", Attrs(left)[1].Key)
	assert.Equal(t, "c", Attrs(right)[1].Key)
}
