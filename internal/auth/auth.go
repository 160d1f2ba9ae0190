// Package auth registers users and checks their credentials. It knows
// nothing about HTTP or sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jdholdren/quill/internal/quill"
)

// ErrPasswordTooLong is returned for passwords bcrypt refuses to hash (over 72 bytes).
var ErrPasswordTooLong = errors.New("password too long")

type (
	Service struct {
		users  quill.UserRepository
		hasher Hasher

		// Checked against when the username doesn't exist so both failure
		// paths pay for a hash comparison.
		dummyDigest string
	}

	RegisterArgs struct {
		Username  string
		Password  string
		Email     string
		FirstName string
		LastName  string
	}
)

func NewService(users quill.UserRepository, hasher Hasher) (Service, error) {
	dummy, err := hasher.Hash("quill-dummy-password")
	if err != nil {
		return Service{}, fmt.Errorf("error creating dummy digest: %w", err)
	}

	return Service{
		users:       users,
		hasher:      hasher,
		dummyDigest: dummy,
	}, nil
}

// Register hashes the password and stores the new user. A taken username
// comes back as [quill.ErrDuplicateUsername].
func (s Service) Register(ctx context.Context, args RegisterArgs) (quill.User, error) {
	digest, err := s.hasher.Hash(args.Password)
	if err != nil {
		return quill.User{}, err
	}

	usr, err := s.users.CreateUser(ctx, quill.User{
		Username:  args.Username,
		Password:  digest,
		Email:     args.Email,
		FirstName: args.FirstName,
		LastName:  args.LastName,
	})
	if err != nil {
		return quill.User{}, err
	}

	slog.InfoContext(ctx, "registered user", "username", usr.Username)
	return usr, nil
}

// Authenticate returns the user if the password matches. An unknown username
// and a wrong password look identical to the caller.
func (s Service) Authenticate(ctx context.Context, username, password string) (quill.User, bool, error) {
	usr, err := s.users.User(ctx, username)
	if errors.Is(err, quill.ErrNotFound) {
		s.hasher.Verify(password, s.dummyDigest)
		return quill.User{}, false, nil
	}
	if err != nil {
		return quill.User{}, false, fmt.Errorf("error looking up user: %w", err)
	}

	if !s.hasher.Verify(password, usr.Password) {
		return quill.User{}, false, nil
	}

	return usr, true, nil
}
