package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"kinecare/models"
	"kinecare/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// authenticate validates the bearer token and returns the subject and
// role, or false when the request carries no usable credentials.
func authenticate(c *gin.Context) (string, models.Role, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" {
		return "", "", false
	}

	userID, role, err := utils.ExtractClaimsFromToken(tokenString)
	if err != nil || userID == "" {
		return "", "", false
	}

	// Compare against the cached hash so logout revokes access tokens
	// before they expire. A cache miss falls back to trusting the
	// signature.
	if authCache := utils.AuthCacheClient; authCache != nil {
		cacheKey := utils.AuthCachePrefix + userID
		cachedHash, err := authCache.Get(c.Request.Context(), cacheKey).Result()
		switch {
		case err == nil:
			if cachedHash != utils.HashToken(tokenString) {
				return "", "", false
			}
			_ = authCache.Expire(c.Request.Context(), cacheKey, time.Hour).Err()
		case err != redis.Nil:
			log.Printf("WARNING: error reading auth cache: %v, trusting token signature", err)
		}
	}

	return userID, models.Role(role), true
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, ok := authenticate(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "insufficient authorization"})
			return
		}
		c.Set(ContextUserID, userID)
		c.Set(ContextRole, role)
		c.Next()
	}
}

// OptionalAuth attaches identity when a valid token is present but lets
// anonymous requests through as guests. Used on the public booking
// endpoints where unregistered visitors may book with contact details.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, role, ok := authenticate(c); ok {
			c.Set(ContextUserID, userID)
			c.Set(ContextRole, role)
		}
		c.Next()
	}
}

// RequireRoles rejects authenticated requests whose role is not listed.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := RoleFromContext(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
	}
}

// ActorFromContext builds the scheduling actor for the current request.
// Anonymous requests map to a guest actor with no identity.
func ActorFromContext(c *gin.Context) (string, models.Role) {
	return UserIDFromContext(c), RoleFromContext(c)
}

// UserIDFromContext returns the authenticated user's ID, or "".
func UserIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// RoleFromContext returns the authenticated role, or guest.
func RoleFromContext(c *gin.Context) models.Role {
	if v, ok := c.Get(ContextRole); ok {
		if role, ok := v.(models.Role); ok {
			return role
		}
	}
	return models.RoleGuest
}
