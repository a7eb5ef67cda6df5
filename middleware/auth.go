package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	UserContextKey = "userID"
	RoleContextKey = "role"

	RoleUser   = "user"
	RoleSupply = "supply"
	RoleAdmin  = "admin"
)

// AuthMiddleware trusts the identity headers set by the gateway in front of
// this service. Authentication itself lives there; here we only need the
// actor and their role.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		role := c.GetHeader("X-User-Role")

		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		// Parse once here so controllers never re-validate the format.
		parsed, err := uuid.Parse(userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID format"})
			c.Abort()
			return
		}
		if role == "" {
			role = RoleUser
		}

		c.Set(UserContextKey, parsed)
		c.Set(RoleContextKey, role)
		c.Next()
	}
}

// AdminOnly rejects non-admin callers.
func AdminOnly() gin.HandlerFunc {
	return requireRole(RoleAdmin)
}

// SupplyOrAdmin allows the supply role and admins.
func SupplyOrAdmin() gin.HandlerFunc {
	return requireRole(RoleSupply, RoleAdmin)
}

func requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(RoleContextKey)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		c.Abort()
	}
}

// GetUserID returns the authenticated actor's id.
func GetUserID(c *gin.Context) uuid.UUID {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// GetRole returns the authenticated actor's role.
func GetRole(c *gin.Context) string {
	if val, ok := c.Get(RoleContextKey); ok {
		if role, ok := val.(string); ok {
			return role
		}
	}
	return ""
}

// IsAdmin reports whether the caller has the admin role.
func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == RoleAdmin
}
