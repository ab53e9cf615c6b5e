package middleware

import (
	"context"                            // Request scoped lookups
	"jacket_marketplace/internal/domain" // Importing domain models
	"net/http"                           // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// UserLoader finds a user by id
type UserLoader interface {
	Get(ctx context.Context, userID uint) (*domain.User, error)
}

// CurrentUserMiddleware loads the authenticated user on each request
func CurrentUserMiddleware(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(UserIDKey) // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}
		user, err := users.Get(c.Request.Context(), userID.(uint)) // Fetch user from database
		if err != nil {
			// Token for a user that no longer exists
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(UserKey, user) // Store user in context
		c.Next()
	}
}

// CurrentUser returns the user stored by CurrentUserMiddleware
func CurrentUser(c *gin.Context) *domain.User {
	return c.MustGet(UserKey).(*domain.User)
}

// RequireRole only lets users with one of roles through
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(UserKey) // Get user from context
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}
		user := v.(*domain.User)
		for _, role := range roles {
			if user.Role == role {
				c.Next() // Allowed role, proceed
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Permission denied!"})
	}
}

// AdminOnlyMiddleware restricts a route group to admins
func AdminOnlyMiddleware() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}
