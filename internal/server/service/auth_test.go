package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/gophauth/internal/crypto"
	"github.com/iudanet/gophauth/internal/logging"
	"github.com/iudanet/gophauth/internal/server/cache"
	"github.com/iudanet/gophauth/internal/server/jwt"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserStorage, *fakeSessions) {
	t.Helper()
	users := newFakeUserStorage()
	sessions := &fakeSessions{}
	tokens := jwt.NewService(testSecret, time.Hour)
	svc := NewAuthService(logging.Discard(), users, crypto.NewPasswordHasher(bcrypt.MinCost), sessions, tokens)
	return svc, users, sessions
}

func TestAuthService_RegisterLoginRoundTrip(t *testing.T) {
	svc, _, sessions := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, " Alice@Example.COM ", "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	logged, err := svc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	assert.Equal(t, true, sessions.keys[cache.SessionFlagKey("alice@example.com")])

	token, expiresAt, err := svc.IssueToken(logged)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	identity, err := jwt.NewService(testSecret, time.Hour).CurrentUser(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "alice", identity.Username)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	tests := []struct {
		name     string
		email    string
		username string
		password string
	}{
		{name: "bad email", email: "not-an-email", username: "alice", password: "password1"},
		{name: "short username", email: "a@b.io", username: "al", password: "password1"},
		{name: "short password", email: "a@b.io", username: "alice", password: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.username, tt.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@example.com", "bob", "password1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "BOB@example.com", "bobby", "password2")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_RegisterConcurrentDuplicates(t *testing.T) {
	svc, users, _ := newTestAuthService(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), "race@example.com", "racer", "password1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
	assert.Len(t, users.byID, 1)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, users, sessions := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol@example.com", "carol", "password1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Login(ctx, "carol@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, sessions.keys)

	users.getErr = errors.New("connection refused")
	_, err = svc.Login(ctx, "carol@example.com", "password1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestAuthService_LoginSucceedsWhenSessionFlagFails(t *testing.T) {
	svc, _, sessions := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dave@example.com", "dave", "password1")
	require.NoError(t, err)

	sessions.fail = true
	_, err = svc.Login(ctx, "dave@example.com", "password1")
	assert.NoError(t, err)
}

func TestAuthService_LoginAttemptLimit(t *testing.T) {
	users := newFakeUserStorage()
	attempts := &fakeAttempts{max: 2}
	svc := NewAuthService(logging.Discard(), users, crypto.NewPasswordHasher(bcrypt.MinCost), nil,
		jwt.NewService(testSecret, time.Hour), WithLoginAttempts(attempts))
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "alice", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// успешный вход сбрасывает счетчик
	_, err = svc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Zero(t, attempts.counts["alice@example.com"])

	_, err = svc.Login(ctx, "Alice@Example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Login(ctx, "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// лимит исчерпан: даже верный пароль не проверяется
	_, err = svc.Login(ctx, "alice@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrRateLimited)

	// счетчик ведется по email, а не глобально
	_, err = svc.Login(ctx, "bob@example.com", "whatever-pass")
	assert.ErrorIs(t, err, ErrNotFound)
}
