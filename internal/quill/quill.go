// Package quill holds the domain types shared by the store, the auth service
// and the web server.
package quill

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrDuplicateUsername = errors.New("username already taken")
)

type (
	// User is a registered account. Username is the primary key and never changes.
	User struct {
		Username  string `db:"username"`
		Password  string `db:"password"` // bcrypt digest, never plaintext
		Email     string `db:"email"`
		FirstName string `db:"first_name"`
		LastName  string `db:"last_name"`
	}

	// Feedback is a short note owned by a single user.
	Feedback struct {
		ID       int64  `db:"id"`
		Title    string `db:"title"`
		Content  string `db:"content"`
		Username string `db:"username"`
	}

	UserRepository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		User(ctx context.Context, username string) (User, error)
		// Removes the user and every feedback row they own.
		DeleteUser(ctx context.Context, username string) error
	}

	FeedbackRepository interface {
		CreateFeedback(ctx context.Context, title, content, owner string) (Feedback, error)
		Feedback(ctx context.Context, id int64) (Feedback, error)
		FeedbackByOwner(ctx context.Context, username string) ([]Feedback, error)
		// Only title and content are touched, ownership stays put.
		UpdateFeedback(ctx context.Context, id int64, title, content string) (Feedback, error)
		DeleteFeedback(ctx context.Context, id int64) error
	}

	Repository interface {
		UserRepository
		FeedbackRepository
	}
)

// FullName is what the detail page greets the user with.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
