package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/regality/formchat/pkg/auth"
	"github.com/regality/formchat/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var _ ports.IdentityVerifier = (*auth.Service)(nil)

func newService(opts ...auth.Option) *auth.Service {
	opts = append([]auth.Option{auth.WithBcryptCost(bcrypt.MinCost)}, opts...)
	return auth.NewService([]byte("test-secret"), opts...)
}

func TestSignupLoginVerify(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "ravi@example.com", "hunter2"))

	token, err := svc.Login(ctx, "ravi@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	email, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	require.NoError(t, svc.Signup(ctx, "a@b.c", "right"))

	_, err := svc.Login(ctx, "a@b.c", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@b.c", "right")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestSignup_Validation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	assert.ErrorIs(t, svc.Signup(ctx, "", "x"), auth.ErrMissingCredentials)
	assert.ErrorIs(t, svc.Signup(ctx, "a@b.c", ""), auth.ErrMissingCredentials)
	assert.ErrorIs(t, svc.Signup(ctx, "a@b.c", strings.Repeat("x", 73)), auth.ErrPasswordTooLong)
	require.NoError(t, svc.Signup(ctx, "max@b.c", strings.Repeat("x", 72)))

	require.NoError(t, svc.Signup(ctx, "a@b.c", "x"))
	assert.ErrorIs(t, svc.Signup(ctx, "a@b.c", "y"), auth.ErrUserExists)
}

func TestVerify_Expired(t *testing.T) {
	now := time.Now()
	svc := newService(auth.WithClock(func() time.Time { return now }))
	ctx := context.Background()
	require.NoError(t, svc.Signup(ctx, "a@b.c", "x"))

	token, err := svc.Login(ctx, "a@b.c", "x")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerify_Forged(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Email: "mallory@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.Verify(ctx, signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = svc.Verify(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
