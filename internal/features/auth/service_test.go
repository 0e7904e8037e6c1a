package auth

import (
	"context"
	"testing"

	"nextgen-crm/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAuth(t *testing.T) (AuthService, store.Store) {
	t.Helper()
	s := store.NewMemoryStore()
	return NewAuthService(s, zap.NewNop()), s
}

func seedUser(t *testing.T, s store.Store, id, email, password string) {
	t.Helper()
	data, err := store.Encode(&User{Name: "Pat", Email: email, Password: password, Status: "Active"})
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), CollectionUsers, id, data))
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path returns a token", func(t *testing.T) {
		svc, s := newTestAuth(t)
		seedUser(t, s, "u1", "pat@example.com", "hunter2")

		principal, err := svc.SignIn(ctx, "pat@example.com", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, "u1", principal.AuthID)
		assert.Equal(t, "pat@example.com", principal.Email)
		assert.NotEmpty(t, principal.Token)
	})

	t.Run("email is normalized before lookup", func(t *testing.T) {
		svc, s := newTestAuth(t)
		seedUser(t, s, "u1", "pat@example.com", "hunter2")

		principal, err := svc.SignIn(ctx, "  PAT@Example.COM ", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, "pat@example.com", principal.Email)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		svc, _ := newTestAuth(t)
		_, err := svc.SignIn(ctx, "not-an-email", "x")
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newTestAuth(t)
		_, err := svc.SignIn(ctx, "ghost@example.com", "x")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, s := newTestAuth(t)
		seedUser(t, s, "u1", "pat@example.com", "hunter2")

		_, err := svc.SignIn(ctx, "pat@example.com", "wrong")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("repeated failures throttle further attempts", func(t *testing.T) {
		svc, s := newTestAuth(t)
		seedUser(t, s, "u1", "pat@example.com", "hunter2")

		for i := 0; i < maxFailedAttempts; i++ {
			_, err := svc.SignIn(ctx, "pat@example.com", "wrong")
			assert.ErrorIs(t, err, ErrWrongPassword)
		}

		// Even the correct password is refused while throttled.
		_, err := svc.SignIn(ctx, "pat@example.com", "hunter2")
		assert.ErrorIs(t, err, ErrTooManyAttempts)
	})

	t.Run("success clears the failure count", func(t *testing.T) {
		svc, s := newTestAuth(t)
		seedUser(t, s, "u1", "pat@example.com", "hunter2")

		for i := 0; i < maxFailedAttempts-1; i++ {
			_, _ = svc.SignIn(ctx, "pat@example.com", "wrong")
		}
		_, err := svc.SignIn(ctx, "pat@example.com", "hunter2")
		require.NoError(t, err)

		_, err = svc.SignIn(ctx, "pat@example.com", "wrong")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})
}

func TestTranslate(t *testing.T) {
	assert.Equal(t, "Incorrect password. Please try again.", Translate(ErrWrongPassword))
	assert.Equal(t, "No account found with this email.", Translate(ErrUserNotFound))
	assert.Equal(t, "Too many failed attempts. Please wait and try again.", Translate(ErrTooManyAttempts))
	assert.Equal(t, "Please enter a valid email address.", Translate(ErrInvalidEmail))
	assert.Equal(t, "An error occurred during login. Please try again.", Translate(assert.AnError))
}
