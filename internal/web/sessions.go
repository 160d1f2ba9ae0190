package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"

	qerrs "github.com/jdholdren/quill/internal/errors"
	"github.com/jdholdren/quill/internal/quill"
)

const sessionCookieName = "quill_session"

// Describes a user's sessionState that's persisted to their cookie.
//
// The username is the only thing that says who the caller is. Handlers load it
// once per request and pass it around explicitly.
type sessionState struct {
	Username string
	Flashes  []string // Shown once on the next rendered page
}

// Fetches the current session tied to the request. A missing or tampered
// cookie is just an empty session.
func session(r *http.Request, secureCookie *securecookie.SecureCookie) sessionState {
	cookie, err := r.Cookie(sessionCookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return sessionState{}
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "error fetching cookie", "err", err)
		return sessionState{}
	}

	value := sessionState{}
	if err := secureCookie.Decode(sessionCookieName, cookie.Value, &value); err != nil {
		slog.WarnContext(r.Context(), "error decoding cookie", "err", err)
		return sessionState{}
	}

	return value
}

// Sets the session on the response.
func setSession(w http.ResponseWriter, secureCookie *securecookie.SecureCookie, https bool, sess sessionState) error {
	encoded, err := secureCookie.Encode(sessionCookieName, sess)
	if err != nil {
		return qerrs.E(err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		Secure:   https,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// login overwrites whoever was logged in before.
func (s *sessionState) login(usr quill.User) {
	s.Username = usr.Username
}

// logout is fine to call on a session that was never logged in.
func (s *sessionState) logout() {
	s.Username = ""
}

func (s sessionState) currentUser() (string, bool) {
	return s.Username, s.Username != ""
}

// requireSelf only lets the caller through when they are logged in as owner.
// An empty session gets the same 401 as a mismatched one.
func (s sessionState) requireSelf(owner string) error {
	username, ok := s.currentUser()
	if !ok || username != owner {
		return qerrs.E("session does not own resource", http.StatusUnauthorized)
	}

	return nil
}

func (s *sessionState) addFlash(msg string) {
	s.Flashes = append(s.Flashes, msg)
}

func (s *sessionState) popFlashes() []string {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}
