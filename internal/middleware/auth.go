package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tallerhub/backend/internal/auth"
	"github.com/tallerhub/backend/pkg/response"
)

// Gin context keys populated by JWT for downstream handlers.
const (
	ContextUserID    = "admin_user_id"
	ContextUserRole  = "admin_user_role"
	ContextUserEmail = "admin_user_email"
)

// JWT guards the admin API: it requires a valid bearer token and stores the
// claims in the request context.
func JWT(tokens *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Unauthorized(c, "se requiere un token de autorización")
			c.Abort()
			return
		}
		claims, err := tokens.Validate(token)
		if err != nil {
			response.Unauthorized(c, "token inválido o expirado")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

// RequireRole restricts a route to the given roles. It must run after JWT.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "permisos insuficientes")
		c.Abort()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
