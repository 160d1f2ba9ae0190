package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	qerrs "github.com/jdholdren/quill/internal/errors"
	"github.com/jdholdren/quill/internal/quill"
)

//go:embed templates/*.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"userPath": userPath,
}

// Each page is parsed together with the layout so they can all define "content".
var pages = parsePages(
	"register.html",
	"login.html",
	"secret.html",
	"user.html",
	"feedback.html",
)

func parsePages(names ...string) map[string]*template.Template {
	parsed := make(map[string]*template.Template, len(names))
	for _, name := range names {
		parsed[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name))
	}

	return parsed
}

// page is everything any template might want. Most pages only fill a couple of fields.
type page struct {
	Viewer  string
	Flashes []string
	Form    any
	Errors  map[string][]string

	User     quill.User
	Feedback []quill.Feedback
	Item     quill.Feedback
}

// render writes the page. Pending flashes are shown and cleared from the
// session in the same response.
func (s Server) render(w http.ResponseWriter, sess *sessionState, status int, name string, data page) error {
	tmpl, ok := pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	data.Viewer, _ = sess.currentUser()
	data.Flashes = sess.popFlashes()

	// Render first so a broken template doesn't leave a half-written page
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("error rendering %s: %w", name, err)
	}

	if len(data.Flashes) > 0 {
		if err := setSession(w, s.secureCookie, s.httpsCookies, *sess); err != nil {
			return err
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// renderInvalid re-shows a form with the field errors carried by err. Errors
// without details are passed through untouched.
func (s Server) renderInvalid(w http.ResponseWriter, sess *sessionState, name string, data page, err error) error {
	sErr := &qerrs.Error{}
	if !asDetailed(err, &sErr) {
		return err
	}

	data.Errors = sErr.FieldErrors()
	return s.render(w, sess, http.StatusOK, name, data)
}

// asDetailed reports whether err is a structured error with field details.
func asDetailed(err error, target **qerrs.Error) bool {
	return errors.As(err, target) && len((*target).Details) > 0
}
