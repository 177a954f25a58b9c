package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_paygate/internal/models"
	"github.com/GTDGit/gtd_paygate/internal/service"
	"github.com/GTDGit/gtd_paygate/internal/utils"
)

const principalKey = "principal"

// JWTMiddleware authenticates requests carrying "Authorization: Bearer <token>".
type JWTMiddleware struct {
	authService *service.AuthService
}

func NewJWTMiddleware(authService *service.AuthService) *JWTMiddleware {
	return &JWTMiddleware{authService: authService}
}

// Handle rejects the request with 401 when the bearer token is missing,
// expired or invalid.
func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := m.authService.Validate(BearerToken(c.GetHeader("Authorization")))
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}

		c.Set(principalKey, principal)
		c.Set("client_id", principal.ClientID)
		c.Next()
	}
}

// BearerToken extracts the token from an Authorization header value, or ""
// when the header is absent or uses another scheme.
func BearerToken(header string) string {
	token, ok := strings.CutPrefix(header, service.TokenType+" ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetPrincipal returns the authenticated caller from context.
func GetPrincipal(c *gin.Context) *models.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*models.Principal)
	return p
}
