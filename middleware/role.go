package middleware

import (
	"net/http"

	"fixerhub/models"
	"fixerhub/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only if the caller has one of roles. It must run after
// JWTAuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor.ID == "" {
			unauthorized(c, "Authentication required")
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Message: "You do not have access to this resource"})
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

func ProviderOnly() gin.HandlerFunc {
	return RequireRole(models.RoleProvider)
}

func SeekerOnly() gin.HandlerFunc {
	return RequireRole(models.RoleSeeker)
}
