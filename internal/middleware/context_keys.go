package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/sunrisehms/finance_backend/internal/core/domain"
)

// contextKey is a private type for request context keys to prevent collisions.
type contextKey string

const (
	loggerCtxKey   = contextKey("logger")
	userIDCtxKey   = contextKey("userID")
	userRoleCtxKey = contextKey("userRole")
)

// GetUserIDFromContext retrieves the authenticated user ID set by AuthMiddleware.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	v := c.Request.Context().Value(userIDCtxKey)
	if v == nil {
		return "", false
	}
	userID, ok := v.(string)
	return userID, ok
}

// GetActorFromContext builds the acting user from the authenticated request
// context. The boolean is false when the request is unauthenticated.
func GetActorFromContext(c *gin.Context) (domain.Actor, bool) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return domain.Actor{}, false
	}
	roleVal := c.Request.Context().Value(userRoleCtxKey)
	role, ok := roleVal.(domain.Role)
	if !ok {
		return domain.Actor{}, false
	}
	return domain.Actor{UserID: userID, Role: role}, true
}

func withActor(ctx context.Context, userID string, role domain.Role) context.Context {
	ctx = context.WithValue(ctx, userIDCtxKey, userID)
	return context.WithValue(ctx, userRoleCtxKey, role)
}
