package utilities

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrNoToken is returned when a request carries neither a session cookie nor a bearer token.
var ErrNoToken = errors.New("Not authenticated")

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>" header.
func ExtractBearerToken(c *gin.Context) (string, error) {

	const BearerSchema = "Bearer "
	authHeader := c.GetHeader("Authorization")

	if len(authHeader) <= len(BearerSchema) || !strings.EqualFold(authHeader[:len(BearerSchema)], BearerSchema) {
		return "", errors.New("Invalid authorization header")
	}

	return strings.TrimSpace(authHeader[len(BearerSchema):]), nil
}

// ExtractSessionToken returns the session token from the named cookie, falling back
// to a bearer header for clients that do not keep cookies.
func ExtractSessionToken(c *gin.Context, cookieName string) (string, error) {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie, nil
	}
	if token, err := ExtractBearerToken(c); err == nil && token != "" {
		return token, nil
	}
	return "", ErrNoToken
}
