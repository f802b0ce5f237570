// Package middleware contain utilities middleware code
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/Jogatev/chebeneleven-sub000/internal/auth"
	"github.com/Jogatev/chebeneleven-sub000/internal/storage"
	"github.com/Jogatev/chebeneleven-sub000/internal/utilities"
)

// RequireAuth resolves the session of the request, re-fetches its user from storage
// and stores it in the gin context under utilities.UserContextKey. Requests without a
// live session are rejected with 401.
func RequireAuth(sessions *auth.SessionManager, store storage.Storage, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx *gin.Context) {
		sess, err := sessions.Resolve(ctx)
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
					Error: "Session expired",
				})
			case errors.Is(err, auth.ErrNoSession), errors.Is(err, auth.ErrInvalidToken):
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
					Error: "Not authenticated",
				})
			default:
				log.Error("failed to resolve session", zap.Error(err))
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, utilities.ErrorResponse{
					Error: "Failed to validate session",
				})
			}
			return
		}

		foundUser, err := store.GetUser(ctx.Request.Context(), sess.UserID)
		if err != nil {
			log.Error("failed to retrieve session user", zap.Uint("user_id", sess.UserID), zap.Error(err))
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: "Failed to retrieve user data",
			})
			return
		}
		if foundUser == nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error: "User not exist",
			})
			return
		}

		ctx.Set(utilities.UserContextKey, *foundUser)
		ctx.Next()
	}
}
