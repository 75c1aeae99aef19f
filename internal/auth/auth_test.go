package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phPortfolio/internal/portfolio"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestAuthenticate(t *testing.T) {
	users := []portfolio.AdminUser{
		{ID: "1", Username: "admin", Password: "admin"},
		{ID: "2", Username: "editor", Password: "s3cret"},
	}

	u, err := Authenticate(users, "editor", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "2", u.ID)

	_, errUnknown := Authenticate(users, "ghost", "admin")
	_, errWrong := Authenticate(users, "admin", "nope")
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrong)

	_, err = Authenticate(users, "Admin", "admin")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = Authenticate(users, "", "admin")
	assert.ErrorIs(t, err, portfolio.ErrValidation)
	_, err = Authenticate(users, "admin", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestRedis(t)
	s, err := NewSessions(client, "secret", time.Hour)
	require.NoError(t, err)

	sess, err := s.Open(ctx, "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.True(t, s.Authenticated(ctx, sess.Token))

	claims, err := s.Validate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	require.NoError(t, s.Close(ctx, sess.Token))
	assert.False(t, s.Authenticated(ctx, sess.Token))
	require.NoError(t, s.Close(ctx, sess.Token))
}

func TestSessionFlagMustBeCanonical(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	s, err := NewSessions(client, "secret", time.Hour)
	require.NoError(t, err)

	sess, err := s.Open(ctx, "admin")
	require.NoError(t, err)
	claims, err := s.Validate(ctx, sess.Token)
	require.NoError(t, err)

	require.NoError(t, mr.Set(sessionKeyPrefix+claims.ID, "1"))
	_, err = s.Validate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSessionExpiresWithRedisTTL(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	s, err := NewSessions(client, "secret", time.Minute)
	require.NoError(t, err)

	sess, err := s.Open(ctx, "admin")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	assert.False(t, s.Authenticated(ctx, sess.Token))
}

func TestSessionRejectsForeignTokens(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestRedis(t)
	s, err := NewSessions(client, "secret", time.Hour)
	require.NoError(t, err)

	assert.False(t, s.Authenticated(ctx, ""))
	assert.False(t, s.Authenticated(ctx, "garbage"))

	other, err := NewSessions(client, "other-secret", time.Hour)
	require.NoError(t, err)
	sess, err := other.Open(ctx, "admin")
	require.NoError(t, err)
	assert.False(t, s.Authenticated(ctx, sess.Token))

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "x"},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.False(t, s.Authenticated(ctx, raw))

	_, err = NewSessions(client, "", time.Hour)
	assert.Error(t, err)
}

func TestLoginLimiter(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestRedis(t)
	l := NewLoginLimiter(client, 2)
	l.now = func() time.Time { return time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC) }

	assert.True(t, l.Allow(ctx, "1.2.3.4", "admin"))
	assert.True(t, l.Allow(ctx, "1.2.3.4", "ADMIN"))
	assert.False(t, l.Allow(ctx, "1.2.3.4", "admin"))
	assert.True(t, l.Allow(ctx, "5.6.7.8", "admin"))

	unlimited := NewLoginLimiter(client, 0)
	for i := 0; i < 5; i++ {
		assert.True(t, unlimited.Allow(ctx, "1.2.3.4", "admin"))
	}
}
