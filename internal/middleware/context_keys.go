package middleware

import (
	"context"
	"log/slog"

	"github.com/SscSPs/salon_management_app/internal/utils"
	"github.com/gin-gonic/gin"
)

// contextKey is a private type for context keys. Using a custom type prevents collisions.
type contextKey string

const (
	// userIDKey is the key used to store the authenticated user's ID.
	userIDKey = contextKey("userID")
	// claimsKey holds the parsed access token claims.
	claimsKey = contextKey("claims")
	// loggerCtxKey holds the request-scoped *slog.Logger.
	loggerCtxKey = contextKey("logger")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userIDVal, exists := c.Get(string(userIDKey)); exists {
		userID, ok := userIDVal.(string)
		return userID, ok && userID != ""
	}
	// check in the request context as well
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// GetClaimsFromContext returns the access token claims set by AuthMiddleware.
func GetClaimsFromContext(c *gin.Context) (*utils.AccessClaims, bool) {
	claims, ok := c.Request.Context().Value(claimsKey).(*utils.AccessClaims)
	return claims, ok
}

// GetLoggerFromCtx retrieves the request-scoped logger from a standard context,
// falling back to slog.Default when none was injected.
func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if logger, ok := ctx.Value(loggerCtxKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// WithLogger returns a copy of ctx carrying logger. Background jobs use it to get the
// same logging path as requests.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}
