package auth

import (
	"go.uber.org/zap"

	"github.com/Jogatev/chebeneleven-sub000/internal/metrics"
)

// Attempt results
const (
	attemptSuccess = "success"
	attemptFail    = "fail"
)

// logAuthAttempt records an authentication attempt.
// authType: login|register|logout, identifier: username or user id (optional).
func logAuthAttempt(log *zap.Logger, authType, status, identifier, message string) {
	metrics.AuthAttempts.WithLabelValues(authType, status).Inc()

	fields := []zap.Field{
		zap.String("auth_type", authType),
		zap.String("status", status),
	}
	if identifier != "" {
		fields = append(fields, zap.String("identifier", identifier))
	}
	if message != "" {
		fields = append(fields, zap.String("detail", message))
	}

	if status == attemptSuccess {
		log.Info("auth attempt", fields...)
		return
	}
	log.Warn("auth attempt", fields...)
}
