package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jdholdren/quill/internal/quill"
)

// memUsers mimics the store's uniqueness constraint.
type memUsers struct {
	mu    sync.Mutex
	users map[string]quill.User
	err   error // forced lookup failure
}

func (m *memUsers) CreateUser(_ context.Context, usr quill.User) (quill.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[usr.Username]; ok {
		return quill.User{}, quill.ErrDuplicateUsername
	}
	m.users[usr.Username] = usr
	return usr, nil
}

func (m *memUsers) User(_ context.Context, username string) (quill.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return quill.User{}, m.err
	}
	usr, ok := m.users[username]
	if !ok {
		return quill.User{}, quill.ErrNotFound
	}
	return usr, nil
}

func (m *memUsers) DeleteUser(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.users, username)
	return nil
}

func newTestService(t *testing.T) (Service, *memUsers) {
	t.Helper()

	users := &memUsers{users: map[string]quill.User{}}
	svc, err := NewService(users, BcryptHasher{Cost: bcrypt.MinCost})
	require.NoError(t, err)

	return svc, users
}

func aliceArgs() RegisterArgs {
	return RegisterArgs{
		Username:  "alice",
		Password:  "pw1",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Liddell",
	}
}

func TestRegister_HashesPassword(t *testing.T) {
	var (
		ctx      = context.Background()
		svc, mem = newTestService(t)
	)

	usr, err := svc.Register(ctx, aliceArgs())
	require.NoError(t, err)

	stored := mem.users["alice"]
	assert.Equal(t, usr, stored)
	assert.NotEqual(t, "pw1", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("pw1")))
}

func TestRegister_Duplicate(t *testing.T) {
	var (
		ctx      = context.Background()
		svc, mem = newTestService(t)
	)

	_, err := svc.Register(ctx, aliceArgs())
	require.NoError(t, err)

	again := aliceArgs()
	again.Password = "different"
	_, err = svc.Register(ctx, again)
	assert.ErrorIs(t, err, quill.ErrDuplicateUsername)
	assert.Len(t, mem.users, 1)
	assert.True(t, BcryptHasher{}.Verify("pw1", mem.users["alice"].Password))
}

func TestRegister_PasswordTooLong(t *testing.T) {
	svc, mem := newTestService(t)

	args := aliceArgs()
	args.Password = strings.Repeat("x", 73)
	_, err := svc.Register(context.Background(), args)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Empty(t, mem.users)
}

func TestAuthenticate(t *testing.T) {
	var (
		ctx    = context.Background()
		svc, _ = newTestService(t)
	)
	_, err := svc.Register(ctx, aliceArgs())
	require.NoError(t, err)

	usr, ok, err := svc.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", usr.Username)

	// Wrong password and unknown user are indistinguishable
	wrongUsr, wrongOK, wrongErr := svc.Authenticate(ctx, "alice", "wrongpw")
	ghostUsr, ghostOK, ghostErr := svc.Authenticate(ctx, "ghost", "anything")
	assert.False(t, wrongOK)
	assert.False(t, ghostOK)
	assert.NoError(t, wrongErr)
	assert.NoError(t, ghostErr)
	assert.Equal(t, wrongUsr, ghostUsr)
	assert.Equal(t, quill.User{}, wrongUsr)
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	svc, mem := newTestService(t)
	mem.err = errors.New("disk on fire")

	_, ok, err := svc.Authenticate(context.Background(), "alice", "pw1")
	assert.False(t, ok)
	assert.Error(t, err)
}
