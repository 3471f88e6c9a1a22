package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/steveyeow/academi/internal/pkg/errcode"
	"github.com/steveyeow/academi/internal/pkg/jwt"
	"github.com/steveyeow/academi/internal/pkg/response"
)

const ContextRoleKey = "role"

// AdminAuth guards maintenance endpoints. Tokens come from the auth token
// endpoint; an empty secret means admin access is disabled entirely.
func AdminAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(secret) == 0 {
			response.Error(c, errcode.ErrUnauthorized, "admin access disabled")
			c.Abort()
			return
		}
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, errcode.ErrUnauthorized, "missing authorization")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, errcode.ErrUnauthorized, "invalid authorization")
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(parts[1], secret)
		if err != nil {
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		if claims.Role != "admin" {
			response.Error(c, errcode.ErrUnauthorized, "admin role required")
			c.Abort()
			return
		}
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}
