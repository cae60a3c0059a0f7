package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyRoundtrip(t *testing.T) {
	t.Parallel()

	codec := NewCodec("super-secret", time.Hour)

	raw, err := codec.Issue("user-123", "jonas@x.com")
	require.NoError(t, err)

	claims, err := codec.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "jonas@x.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", time.Hour)
	codec.ttl = -time.Minute

	raw, err := codec.Issue("u1", "u1@x.com")
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	raw, err := NewCodec("right-secret", time.Hour).Issue("u2", "u2@x.com")
	require.NoError(t, err)

	_, err = NewCodec("wrong-secret", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", time.Hour)

	for _, raw := range []string{"", "garbage", "not.a.jwt"} {
		_, err := codec.Verify(raw)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

func TestVerifyNotYetValid(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", time.Hour)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u3",
			NotBefore: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
		},
		Email: "u3@x.com",
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	assert.ErrorIs(t, err, ErrNotYetValid)
}

func TestVerifyRejectsNonHMACAlgorithm(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", time.Hour)

	// alg=none with an empty signature must never validate.
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u4"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	assert.Error(t, err)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", time.Hour)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	assert.ErrorIs(t, err, ErrMalformed)
}
