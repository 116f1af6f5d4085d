package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/gophauth/internal/crypto"
	"github.com/iudanet/gophauth/internal/logging"
	"github.com/iudanet/gophauth/internal/models"
)

func newTestUserService(t *testing.T) (*UserService, *AuthService) {
	t.Helper()
	auth, users, _ := newTestAuthService(t)
	return NewUserService(logging.Discard(), users, crypto.NewPasswordHasher(bcrypt.MinCost)), auth
}

func mustRegister(t *testing.T, auth *AuthService, email, username string) *models.User {
	t.Helper()
	u, err := auth.Register(context.Background(), email, username, "password1")
	require.NoError(t, err)
	return u
}

func strPtr(s string) *string { return &s }

func TestUserService_GetAndList(t *testing.T) {
	svc, auth := newTestUserService(t)
	ctx := context.Background()

	for i := range 5 {
		mustRegister(t, auth, fmt.Sprintf("user%d@example.com", i), fmt.Sprintf("user%d", i))
	}
	first := mustRegister(t, auth, "a@example.com", "first")

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Username)

	_, err = svc.Get(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	page, err := svc.List(ctx, 2, 3)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	_, err = svc.List(ctx, -1, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_Update(t *testing.T) {
	svc, auth := newTestUserService(t)
	ctx := context.Background()

	u := mustRegister(t, auth, "erin@example.com", "erin")
	mustRegister(t, auth, "frank@example.com", "frank")

	updated, err := svc.Update(ctx, u.ID, UserUpdate{Username: strPtr("erin2"), Password: strPtr("new-password")})
	require.NoError(t, err)
	assert.Equal(t, "erin2", updated.Username)
	assert.Equal(t, "erin@example.com", updated.Email)
	assert.False(t, updated.UpdatedAt.Before(u.UpdatedAt))

	_, err = auth.Login(ctx, "erin@example.com", "new-password")
	assert.NoError(t, err)
	_, err = auth.Login(ctx, "erin@example.com", "password1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Update(ctx, u.ID, UserUpdate{Email: strPtr("FRANK@example.com")})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Update(ctx, u.ID, UserUpdate{Email: strPtr("broken")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(ctx, "00000000-0000-0000-0000-000000000000", UserUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_Delete(t *testing.T) {
	svc, auth := newTestUserService(t)
	ctx := context.Background()

	u := mustRegister(t, auth, "gina@example.com", "gina")

	require.NoError(t, svc.Delete(ctx, u.ID))
	assert.ErrorIs(t, svc.Delete(ctx, u.ID), ErrNotFound)

	_, err := auth.Login(ctx, "gina@example.com", "password1")
	assert.ErrorIs(t, err, ErrNotFound)
}
