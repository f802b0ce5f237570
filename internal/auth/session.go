package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Jogatev/chebeneleven-sub000/internal/utilities"
)

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "jobboard_session"

// ErrNoSession is returned when the request has no live session.
var ErrNoSession = errors.New("Not authenticated")

// Session is a resolved, live session.
type Session struct {
	ID     string
	UserID uint
}

// SessionManager ties the signed cookie to the server side session store.
type SessionManager struct {
	Store  SessionStore
	Signer *TokenSigner
	TTL    time.Duration
	Secure bool
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(store SessionStore, signer *TokenSigner, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		Store:  store,
		Signer: signer,
		TTL:    ttl,
		Secure: secure,
	}
}

// Start opens a new session for userID, sets the cookie and returns the token.
func (m *SessionManager) Start(c *gin.Context, userID uint) (string, error) {
	sessionID := uuid.NewString()

	token, expires, err := m.Signer.Sign(sessionID, userID, m.TTL)
	if err != nil {
		return "", err
	}

	if err := m.Store.Save(c.Request.Context(), sessionID, userID, expires); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(m.TTL.Seconds()), "/", "", m.Secure, true)
	return token, nil
}

// Resolve returns the session carried by the request's cookie or bearer token.
func (m *SessionManager) Resolve(c *gin.Context) (*Session, error) {
	token, err := utilities.ExtractSessionToken(c, SessionCookieName)
	if err != nil {
		return nil, ErrNoSession
	}

	claims, err := m.Signer.Validate(token)
	if err != nil {
		return nil, err
	}

	userID, err := subjectUserID(claims)
	if err != nil {
		return nil, err
	}

	storedID, ok, err := m.Store.Lookup(c.Request.Context(), claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if !ok || storedID != userID {
		return nil, ErrNoSession
	}

	return &Session{ID: claims.ID, UserID: userID}, nil
}

// End deletes the request's session, if any, and clears the cookie.
func (m *SessionManager) End(c *gin.Context) error {
	defer m.clearCookie(c)

	token, err := utilities.ExtractSessionToken(c, SessionCookieName)
	if err != nil {
		return nil
	}
	claims, err := m.Signer.Validate(token)
	if err != nil {
		return nil
	}
	return m.Store.Delete(c.Request.Context(), claims.ID)
}

func (m *SessionManager) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", m.Secure, true)
}
