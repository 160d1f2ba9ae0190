package web

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	goaway "github.com/TwiN/go-away"
	"github.com/go-playground/validator/v10"

	qerrs "github.com/jdholdren/quill/internal/errors"
)

// Every form is a struct: the `form` tag names the field as it's posted and
// the `validate` tag lists its rules. Forms are validated before anything
// touches the auth service or the repo.
type (
	registerForm struct {
		Username  string `form:"username" validate:"required,max=20"`
		Password  string `form:"password" validate:"required"`
		Email     string `form:"email" validate:"required,email,max=50"`
		FirstName string `form:"first_name" validate:"required,max=30"`
		LastName  string `form:"last_name" validate:"required,max=30"`
	}

	loginForm struct {
		Username string `form:"username" validate:"required,max=20"`
		Password string `form:"password" validate:"required"`
	}

	feedbackForm struct {
		Title   string `form:"title" validate:"required,max=100"`
		Content string `form:"content" validate:"required"`
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})

	return v
}

func parseRegisterForm(r *http.Request) registerForm {
	return registerForm{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		Password:  r.PostFormValue("password"),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
	}
}

func parseLoginForm(r *http.Request) loginForm {
	return loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
}

func parseFeedbackForm(r *http.Request) feedbackForm {
	return feedbackForm{
		Title:   strings.TrimSpace(r.PostFormValue("title")),
		Content: strings.TrimSpace(r.PostFormValue("content")),
	}
}

// validateForm runs the form's rules and turns failures into a 422 with one
// detail per broken rule.
func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("error validating form: %w", err)
	}

	details := make([]qerrs.Detail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, qerrs.Detail{Field: fe.Field(), Error: fieldMessage(fe)})
	}
	return qerrs.E("invalid form", http.StatusUnprocessableEntity, details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "email":
		return "Invalid email address."
	default:
		return "Invalid value."
	}
}

// checkProfanity is the opt-in word filter for feedback. It reports in the
// same shape as [validateForm] so the form can show it inline.
func checkProfanity(form feedbackForm) error {
	var details []qerrs.Detail
	if goaway.IsProfane(form.Title) {
		details = append(details, qerrs.Detail{Field: "title", Error: "Profanity detected."})
	}
	if goaway.IsProfane(form.Content) {
		details = append(details, qerrs.Detail{Field: "content", Error: "Profanity detected."})
	}
	if len(details) == 0 {
		return nil
	}

	return qerrs.E("profanity detected", http.StatusUnprocessableEntity, details)
}
