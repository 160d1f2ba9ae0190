package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/jdholdren/quill/internal/auth"
	qerrs "github.com/jdholdren/quill/internal/errors"
	"github.com/jdholdren/quill/internal/logger"
	"github.com/jdholdren/quill/internal/quill"
)

func userPath(username string) string {
	return "/users/" + url.PathEscape(username)
}

// Attaches the acting user to everything logged for the rest of the request.
func userCtx(ctx context.Context, username string) context.Context {
	return logger.Ctx(ctx, slog.String("username", username))
}

// Maps repo misses onto a 404.
func notFound(err error) error {
	if errors.Is(err, quill.ErrNotFound) {
		return qerrs.E(err, http.StatusNotFound)
	}

	return err
}

func (s Server) getIndex(w http.ResponseWriter, r *http.Request) error {
	http.Redirect(w, r, "/register", http.StatusFound)
	return nil
}

func (s Server) getRegister(w http.ResponseWriter, r *http.Request) error {
	sess := session(r, s.secureCookie)
	return s.render(w, &sess, http.StatusOK, "register.html", page{Form: registerForm{}})
}

func (s Server) postRegister(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx  = r.Context()
		sess = session(r, s.secureCookie)
		form = parseRegisterForm(r)
	)
	if err := validateForm(form); err != nil {
		form.Password = ""
		return s.renderInvalid(w, &sess, "register.html", page{Form: form}, err)
	}

	usr, err := s.auth.Register(ctx, auth.RegisterArgs{
		Username:  form.Username,
		Password:  form.Password,
		Email:     form.Email,
		FirstName: form.FirstName,
		LastName:  form.LastName,
	})
	form.Password = ""
	switch {
	case errors.Is(err, quill.ErrDuplicateUsername):
		return s.renderInvalid(w, &sess, "register.html", page{Form: form},
			qerrs.E(err, http.StatusConflict, qerrs.Detail{Field: "username", Error: "Username already taken"}))
	case errors.Is(err, auth.ErrPasswordTooLong):
		return s.renderInvalid(w, &sess, "register.html", page{Form: form},
			qerrs.E(err, http.StatusUnprocessableEntity, qerrs.Detail{Field: "password", Error: "Password is too long."}))
	case err != nil:
		return err
	}

	sess.login(usr)
	if err := setSession(w, s.secureCookie, s.httpsCookies, sess); err != nil {
		return err
	}

	http.Redirect(w, r, "/secret", http.StatusFound)
	return nil
}

func (s Server) getLogin(w http.ResponseWriter, r *http.Request) error {
	sess := session(r, s.secureCookie)
	return s.render(w, &sess, http.StatusOK, "login.html", page{Form: loginForm{}})
}

func (s Server) postLogin(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx  = r.Context()
		sess = session(r, s.secureCookie)
		form = parseLoginForm(r)
	)
	if err := validateForm(form); err != nil {
		form.Password = ""
		return s.renderInvalid(w, &sess, "login.html", page{Form: form}, err)
	}

	usr, ok, err := s.auth.Authenticate(ctx, form.Username, form.Password)
	if err != nil {
		return err
	}
	if !ok {
		form.Password = ""
		sess.addFlash("Invalid Username/Password")
		return s.render(w, &sess, http.StatusOK, "login.html", page{Form: form})
	}

	sess.login(usr)
	if err := setSession(w, s.secureCookie, s.httpsCookies, sess); err != nil {
		return err
	}
	slog.InfoContext(userCtx(ctx, usr.Username), "logged in")

	http.Redirect(w, r, userPath(usr.Username), http.StatusFound)
	return nil
}

// Clears the session, whether or not anyone was logged in.
func (s Server) getLogout(w http.ResponseWriter, r *http.Request) error {
	sess := session(r, s.secureCookie)
	sess.logout()
	if err := setSession(w, s.secureCookie, s.httpsCookies, sess); err != nil {
		return err
	}

	http.Redirect(w, r, "/login", http.StatusFound)
	return nil
}

// Any logged in user can see this one. Everyone else is sent to log in.
func (s Server) getSecret(w http.ResponseWriter, r *http.Request) error {
	sess := session(r, s.secureCookie)
	if _, ok := sess.currentUser(); !ok {
		return s.redirectToLogin(w, r, &sess)
	}

	return s.render(w, &sess, http.StatusOK, "secret.html", page{})
}

// Sends anonymous visitors to the login page with a notice waiting for them.
func (s Server) redirectToLogin(w http.ResponseWriter, r *http.Request, sess *sessionState) error {
	sess.addFlash("Please login")
	if err := setSession(w, s.secureCookie, s.httpsCookies, *sess); err != nil {
		return err
	}

	http.Redirect(w, r, "/login", http.StatusFound)
	return nil
}

// Nobody logged in is asked to log in. Someone logged in as another user gets a 401.
func (s Server) getUser(w http.ResponseWriter, r *http.Request) error {
	var (
		sess     = session(r, s.secureCookie)
		username = mux.Vars(r)["username"]
	)
	if _, ok := sess.currentUser(); !ok {
		return s.redirectToLogin(w, r, &sess)
	}
	if err := sess.requireSelf(username); err != nil {
		return err
	}

	usr, err := s.repo.User(userCtx(r.Context(), username), username)
	if err != nil {
		return notFound(err)
	}

	return s.renderUser(w, r, &sess, usr, page{Form: feedbackForm{}})
}

// renderUser shows the detail page along with the user's feedback. data
// carries the add-feedback form and its errors.
func (s Server) renderUser(w http.ResponseWriter, r *http.Request, sess *sessionState, usr quill.User, data page) error {
	feedback, err := s.repo.FeedbackByOwner(r.Context(), usr.Username)
	if err != nil {
		return err
	}

	data.User = usr
	data.Feedback = feedback
	return s.render(w, sess, http.StatusOK, "user.html", data)
}

// Deletes the account and all of its feedback, then logs the caller out.
func (s Server) postDeleteUser(w http.ResponseWriter, r *http.Request) error {
	var (
		sess     = session(r, s.secureCookie)
		username = mux.Vars(r)["username"]
	)
	if err := sess.requireSelf(username); err != nil {
		return err
	}

	ctx := userCtx(r.Context(), username)
	if err := s.repo.DeleteUser(ctx, username); err != nil {
		return notFound(err)
	}
	slog.InfoContext(ctx, "deleted user")

	sess.logout()
	if err := setSession(w, s.secureCookie, s.httpsCookies, sess); err != nil {
		return err
	}

	http.Redirect(w, r, "/login", http.StatusFound)
	return nil
}
