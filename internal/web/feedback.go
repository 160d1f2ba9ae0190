package web

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	qerrs "github.com/jdholdren/quill/internal/errors"
	"github.com/jdholdren/quill/internal/quill"
)

// Loads the feedback named in the path. Unknown ids are a 404 before any
// ownership check happens, since the owner isn't known until the row is.
func (s Server) feedbackFromPath(r *http.Request) (quill.Feedback, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["feedbackID"], 10, 64)
	if err != nil {
		return quill.Feedback{}, qerrs.E(err, http.StatusNotFound)
	}

	fb, err := s.repo.Feedback(r.Context(), id)
	if err != nil {
		return quill.Feedback{}, notFound(err)
	}

	return fb, nil
}

// Runs the form rules, then the profanity filter if it's on.
func (s Server) validateFeedback(form feedbackForm) error {
	if err := validateForm(form); err != nil {
		return err
	}
	if s.profanityFilter {
		return checkProfanity(form)
	}

	return nil
}

func (s Server) postAddFeedback(w http.ResponseWriter, r *http.Request) error {
	var (
		sess     = session(r, s.secureCookie)
		username = mux.Vars(r)["username"]
	)
	if err := sess.requireSelf(username); err != nil {
		return err
	}

	ctx := userCtx(r.Context(), username)
	usr, err := s.repo.User(ctx, username)
	if err != nil {
		return notFound(err)
	}

	form := parseFeedbackForm(r)
	if err := s.validateFeedback(form); err != nil {
		return s.renderInvalidUser(w, r, &sess, usr, form, err)
	}

	if _, err := s.repo.CreateFeedback(ctx, form.Title, form.Content, usr.Username); err != nil {
		return notFound(err)
	}

	http.Redirect(w, r, userPath(usr.Username), http.StatusFound)
	return nil
}

// Same as [Server.renderInvalid], but the form lives on the user detail page.
func (s Server) renderInvalidUser(w http.ResponseWriter, r *http.Request, sess *sessionState, usr quill.User, form feedbackForm, err error) error {
	sErr := &qerrs.Error{}
	if !asDetailed(err, &sErr) {
		return err
	}

	return s.renderUser(w, r, sess, usr, page{Form: form, Errors: sErr.FieldErrors()})
}

func (s Server) getUpdateFeedback(w http.ResponseWriter, r *http.Request) error {
	sess := session(r, s.secureCookie)
	fb, err := s.feedbackFromPath(r)
	if err != nil {
		return err
	}
	if err := sess.requireSelf(fb.Username); err != nil {
		return err
	}

	return s.render(w, &sess, http.StatusOK, "feedback.html", page{
		Item: fb,
		Form: feedbackForm{Title: fb.Title, Content: fb.Content},
	})
}

func (s Server) postUpdateFeedback(w http.ResponseWriter, r *http.Request) error {
	sess := session(r, s.secureCookie)
	fb, err := s.feedbackFromPath(r)
	if err != nil {
		return err
	}
	if err := sess.requireSelf(fb.Username); err != nil {
		return err
	}

	form := parseFeedbackForm(r)
	if err := s.validateFeedback(form); err != nil {
		return s.renderInvalid(w, &sess, "feedback.html", page{Item: fb, Form: form}, err)
	}

	if _, err := s.repo.UpdateFeedback(userCtx(r.Context(), fb.Username), fb.ID, form.Title, form.Content); err != nil {
		return notFound(err)
	}

	http.Redirect(w, r, userPath(fb.Username), http.StatusFound)
	return nil
}

func (s Server) postDeleteFeedback(w http.ResponseWriter, r *http.Request) error {
	sess := session(r, s.secureCookie)
	fb, err := s.feedbackFromPath(r)
	if err != nil {
		return err
	}
	if err := sess.requireSelf(fb.Username); err != nil {
		return err
	}

	if err := s.repo.DeleteFeedback(userCtx(r.Context(), fb.Username), fb.ID); err != nil {
		return notFound(err)
	}

	http.Redirect(w, r, userPath(fb.Username), http.StatusFound)
	return nil
}
