package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	qerrs "github.com/jdholdren/quill/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestEConstructor(t *testing.T) {
	got := qerrs.E(
		"something went wrong",
		qerrs.Detail{Field: "username", Error: "was bad"},
		http.StatusBadRequest,
	)
	want := &qerrs.Error{
		Err: errors.New("something went wrong"),
		Details: []qerrs.Detail{
			{Field: "username", Error: "was bad"},
		},
		Status: http.StatusBadRequest,
	}

	assert.Equal(t, want, got)
}

func TestEDefaultsMessageToStatusText(t *testing.T) {
	got := qerrs.E(http.StatusUnauthorized)

	assert.Equal(t, http.StatusUnauthorized, got.Status)
	assert.EqualError(t, got.Err, "Unauthorized")
}

func TestFieldErrors(t *testing.T) {
	err := qerrs.E(http.StatusBadRequest, []qerrs.Detail{
		{Field: "title", Error: "This field is required."},
		{Field: "title", Error: "Too long."},
		{Field: "content", Error: "This field is required."},
	})

	assert.Equal(t, map[string][]string{
		"title":   {"This field is required.", "Too long."},
		"content": {"This field is required."},
	}, err.FieldErrors())
}

func TestStatusAndUnwrap(t *testing.T) {
	sentinel := errors.New("nope")
	wrapped := fmt.Errorf("outer: %w", qerrs.E(sentinel, http.StatusNotFound))

	assert.Equal(t, http.StatusNotFound, qerrs.Status(wrapped))
	assert.ErrorIs(t, wrapped, sentinel)
	assert.Equal(t, http.StatusInternalServerError, qerrs.Status(sentinel))
}
