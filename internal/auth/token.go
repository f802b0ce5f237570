package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// JwtIssuer is the issuer of every session token.
const JwtIssuer = "chebeneleven-jobs"

// ErrInvalidToken covers malformed, forged and wrongly issued tokens.
var ErrInvalidToken = errors.New("Invalid session token")

// TokenSigner signs and validates the HS256 token carried by the session cookie.
type TokenSigner struct {
	secret []byte
}

// NewTokenSigner creates a TokenSigner for the given secret.
func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret)}
}

// Sign issues a token whose jti is the session id and whose subject is the user id.
func (s *TokenSigner) Sign(sessionID string, userID uint, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    JwtIssuer,
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("Failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Validate parses the token and returns its claims. Expired tokens yield jwt.ErrTokenExpired.
func (s *TokenSigner) Validate(encoded string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(encoded, claims, func(token *jwt.Token) (interface{}, error) {
		if _, isvalid := token.Method.(*jwt.SigningMethodHMAC); !isvalid {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, jwt.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}
	if !token.Valid || claims.Issuer != JwtIssuer || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// subjectUserID reads the numeric user id stored in the subject claim.
func subjectUserID(claims *jwt.RegisteredClaims) (uint, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 0)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
