package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qerrs "github.com/jdholdren/quill/internal/errors"
)

func validRegisterForm() registerForm {
	return registerForm{
		Username:  "alice",
		Password:  "pw1",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Liddell",
	}
}

func TestValidateForm_Register(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *registerForm)
		want   map[string][]string
	}{
		{
			name:   "valid",
			mutate: func(f *registerForm) {},
		},
		{
			name:   "missing username",
			mutate: func(f *registerForm) { f.Username = "" },
			want:   map[string][]string{"username": {"This field is required."}},
		},
		{
			name:   "username too long",
			mutate: func(f *registerForm) { f.Username = strings.Repeat("a", 21) },
			want:   map[string][]string{"username": {"Field cannot be longer than 20 characters."}},
		},
		{
			name:   "bad email",
			mutate: func(f *registerForm) { f.Email = "not-an-email" },
			want:   map[string][]string{"email": {"Invalid email address."}},
		},
		{
			name: "names too long",
			mutate: func(f *registerForm) {
				f.FirstName = strings.Repeat("a", 31)
				f.LastName = strings.Repeat("b", 31)
			},
			want: map[string][]string{
				"first_name": {"Field cannot be longer than 30 characters."},
				"last_name":  {"Field cannot be longer than 30 characters."},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validRegisterForm()
			tt.mutate(&form)

			err := validateForm(form)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}

			var qerr *qerrs.Error
			require.ErrorAs(t, err, &qerr)
			assert.Equal(t, http.StatusUnprocessableEntity, qerr.Status)
			assert.Equal(t, tt.want, qerr.FieldErrors())
		})
	}
}

func TestValidateForm_MaxCountsCharacters(t *testing.T) {
	// 20 multi-byte characters still fit
	form := loginForm{Username: strings.Repeat("é", 20), Password: "x"}
	assert.NoError(t, validateForm(form))
}

func TestValidateForm_Feedback(t *testing.T) {
	assert.NoError(t, validateForm(feedbackForm{Title: "Hi", Content: "Hello"}))

	var qerr *qerrs.Error
	require.ErrorAs(t, validateForm(feedbackForm{Title: strings.Repeat("t", 101)}), &qerr)
	assert.Equal(t, map[string][]string{
		"title":   {"Field cannot be longer than 100 characters."},
		"content": {"This field is required."},
	}, qerr.FieldErrors())
}

func TestParseFeedbackForm_KeepsText(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		want    feedbackForm
	}{
		{name: "plain", title: "Hi", content: "Hello", want: feedbackForm{Title: "Hi", Content: "Hello"}},
		{name: "trims", title: "  Hi\n", content: "\tHello ", want: feedbackForm{Title: "Hi", Content: "Hello"}},
		{name: "comparisons", title: "a < b", content: "if x<y && y>z then ok", want: feedbackForm{Title: "a < b", Content: "if x<y && y>z then ok"}},
		{name: "tags", title: "<b>bold</b>", content: "use <div> for layout", want: feedbackForm{Title: "<b>bold</b>", Content: "use <div> for layout"}},
		{name: "entities", title: "Tom &amp; Jerry", content: "&lt;3", want: feedbackForm{Title: "Tom &amp; Jerry", Content: "&lt;3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := url.Values{"title": {tt.title}, "content": {tt.content}}.Encode()
			req := httptest.NewRequest(http.MethodPost, "/users/alice/feedback/add", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			assert.Equal(t, tt.want, parseFeedbackForm(req))
		})
	}
}

func TestCheckProfanity(t *testing.T) {
	assert.NoError(t, checkProfanity(feedbackForm{Title: "Hi", Content: "Hello"}))

	var qerr *qerrs.Error
	require.ErrorAs(t, checkProfanity(feedbackForm{Title: "Hi", Content: "this is shit"}), &qerr)
	assert.Equal(t, map[string][]string{"content": {"Profanity detected."}}, qerr.FieldErrors())
}
