package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndValidate(t *testing.T) {
	signer := NewTokenSigner("secret")

	token, expires, err := signer.Sign("session-1", 42, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := signer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.ID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, JwtIssuer, claims.Issuer)

	userID, err := subjectUserID(claims)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenSigner("one").Sign("s", 1, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenSigner("two").Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	signer := NewTokenSigner("secret")
	token, _, err := signer.Sign("s", 1, -time.Minute)
	require.NoError(t, err)

	_, err = signer.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        "s",
		Issuer:    "someone-else",
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenSigner("secret").Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateGarbage(t *testing.T) {
	_, err := NewTokenSigner("secret").Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
