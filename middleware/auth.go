package middleware

import (
	"certprep-platform/internal/auth"
	"certprep-platform/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates bearer tokens against the identity provider and
// injects the verified user identity into the request context.
type AuthMiddleware struct {
	verifier *auth.Verifier
}

func NewAuthMiddleware(verifier *auth.Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth rejects requests without a valid access token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := utils.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if token == "" {
			utils.RespondWithUnauthorized(c, "Missing or malformed Authorization header")
			c.Abort()
			return
		}

		claims, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			utils.RespondWithUnauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("username", claims.Username)
		c.Set("client_id", claims.ClientID)

		c.Next()
	}
}

// GetUserID retrieves the verified user id from context, "" when anonymous.
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get("user_id"); exists {
		if str, ok := id.(string); ok {
			return str
		}
	}
	return ""
}
