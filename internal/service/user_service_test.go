package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manidoux41/blog-next/internal/domain"
)

func newUserService() (UserService, *memStore) {
	store := newMemStore()
	return NewUserService(&fakeUserRepo{s: store}), store
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, store := newUserService()
	ctx := context.Background()

	userID, err := svc.Register(ctx, "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	stored := store.users[userID]
	require.NotNil(t, stored)
	assert.Equal(t, domain.RoleUser, stored.Role)
	assert.NotEqual(t, "secret123", stored.PasswordHash, "password must be stored hashed")

	user, err := svc.Authenticate(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.True(t, user.IsConnected)
	assert.Empty(t, user.PasswordHash, "authenticated user must be sanitized")
	assert.True(t, store.users[userID].IsConnected)
}

func TestAuthenticateRejectsMismatches(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	// wrong password and unknown email fail identically
	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "", "secret123")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Authenticate(ctx, "alice@example.com", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestRegisterValidationOrder(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
		want     string
	}{
		{"A", "bad", "x", "name must be at least 2 characters long"},
		{"Alice", "not-an-email", "x", "invalid email format"},
		{"Alice", "alice@example.com", "short", "password must be at least 6 characters long"},
	}
	for _, tc := range cases {
		_, err := svc.Register(ctx, tc.name, tc.email, tc.password)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, tc.want, validationErr.Message)
	}
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "Test@x.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Bob", "test@x.com", "secret456")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	svc, store := newUserService()
	ctx := context.Background()

	userID, err := svc.Register(ctx, "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Disconnect(ctx, userID))
	assert.False(t, store.users[userID].IsConnected)

	// second disconnect and unknown user are both fine
	require.NoError(t, svc.Disconnect(ctx, userID))
	require.NoError(t, svc.Disconnect(ctx, "missing"))
}
