// Package web serves the html pages: registration, login, the user's own
// page and their feedback. Every route that touches a user's data goes
// through the session's ownership check first.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"go.uber.org/fx"

	"github.com/jdholdren/quill/internal/auth"
	"github.com/jdholdren/quill/internal/quill"
	"github.com/jdholdren/quill/internal/serverutil"
)

type (
	// Authenticator is the slice of the auth service the handlers need.
	Authenticator interface {
		Register(ctx context.Context, args auth.RegisterArgs) (quill.User, error)
		Authenticate(ctx context.Context, username, password string) (quill.User, bool, error)
	}

	// Server is the html server for users and their feedback.
	Server struct {
		*http.Server

		repo quill.Repository
		auth Authenticator

		secureCookie    *securecookie.SecureCookie
		httpsCookies    bool // Whether or not HTTPS should be used for cookies
		profanityFilter bool
	}

	ServerConfig struct {
		Port            int
		CookieHashKey   []byte
		CookieBlockKey  []byte // Optional, cookies are only signed without it
		HttpsCookies    bool
		ProfanityFilter bool
	}

	Params struct {
		fx.In

		Config ServerConfig
		Repo   quill.Repository
		Auth   Authenticator
	}
)

func NewServer(p Params) *Server {
	var (
		r         = serverutil.ErrRouter{Router: mux.NewRouter()}
		blockKey  []byte
		config    = p.Config
		recoverer = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))
	)
	if len(config.CookieBlockKey) > 0 {
		blockKey = config.CookieBlockKey
	}

	srvr := Server{
		repo:            p.Repo,
		auth:            p.Auth,
		secureCookie:    securecookie.New(config.CookieHashKey, blockKey),
		httpsCookies:    config.HttpsCookies,
		profanityFilter: config.ProfanityFilter,
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			Handler:      recoverer(r),
		},
	}

	r.Use(serverutil.RequestIDMiddleware)
	r.Use(serverutil.AccessLogMiddleware) // Log everything

	r.HandleFuncE("/", srvr.getIndex).Methods(http.MethodGet)
	r.HandleFuncE("/register", srvr.getRegister).Methods(http.MethodGet)
	r.HandleFuncE("/register", srvr.postRegister).Methods(http.MethodPost)
	r.HandleFuncE("/login", srvr.getLogin).Methods(http.MethodGet)
	r.HandleFuncE("/login", srvr.postLogin).Methods(http.MethodPost)
	r.HandleFuncE("/logout", srvr.getLogout).Methods(http.MethodGet)
	r.HandleFuncE("/secret", srvr.getSecret).Methods(http.MethodGet)

	// Owner-only: the session has to match the user in the path
	r.HandleFuncE("/users/{username}", srvr.getUser).Methods(http.MethodGet)
	r.HandleFuncE("/users/{username}/delete", srvr.postDeleteUser).Methods(http.MethodPost)
	r.HandleFuncE("/users/{username}/feedback/add", srvr.postAddFeedback).Methods(http.MethodPost)

	// Owner-only: the session has to match the feedback's owner
	r.HandleFuncE("/feedback/{feedbackID:[0-9]+}/update", srvr.getUpdateFeedback).Methods(http.MethodGet)
	r.HandleFuncE("/feedback/{feedbackID:[0-9]+}/update", srvr.postUpdateFeedback).Methods(http.MethodPost)
	r.HandleFuncE("/feedback/{feedbackID:[0-9]+}/delete", srvr.postDeleteFeedback).Methods(http.MethodPost)

	slog.Debug("configured web server", "port", config.Port)

	return &srvr
}
