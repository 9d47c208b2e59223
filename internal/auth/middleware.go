package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/reelnet/backend/internal/util"
)

// Middleware validates the Authorization bearer token and stores the
// authenticated user on the request context.
func Middleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			util.RespondUnauthorized(c, "no token provided")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			util.RespondUnauthorized(c, "authorization header must use Bearer scheme")
			c.Abort()
			return
		}

		user, err := validator.ValidateToken(tokenString)
		if err != nil {
			util.RespondUnauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}
