package middleware

import (
	"net/http"
	"strings"

	"fixerhub/models"
	"fixerhub/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuthMiddleware.
const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: msg})
}

// JWTAuthMiddleware requires a valid bearer token and stores the caller's id and role.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(c, "Missing or invalid Authorization header")
			return
		}
		claims, err := utils.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}
		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextRole, models.Role(claims.Role))
		c.Next()
	}
}

// OptionalAuthMiddleware behaves like JWTAuthMiddleware when a token is present and lets the
// request through anonymously otherwise.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			if claims, err := utils.ValidateToken(strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
				c.Set(ContextUserID, claims.Subject)
				c.Set(ContextRole, models.Role(claims.Role))
			}
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated caller. The zero Actor means anonymous.
func ActorFrom(c *gin.Context) models.Actor {
	id := c.GetString(ContextUserID)
	role, _ := c.Get(ContextRole)
	r, _ := role.(models.Role)
	return models.Actor{ID: id, Role: r}
}
