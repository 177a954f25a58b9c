package middleware

import (
    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog/log"

    "github.com/GTDGit/gtd_paygate/internal/service"
    "github.com/GTDGit/gtd_paygate/internal/utils"
)

// RequireRole rejects callers whose token lacks role. It must run after
// JWTMiddleware.Handle.
func RequireRole(role string) gin.HandlerFunc {
    return func(c *gin.Context) {
        principal := GetPrincipal(c)
        if principal == nil {
            utils.AbortWithError(c, utils.ErrTokenMissing)
            return
        }

        if err := service.Authorize(principal.Roles, role); err != nil {
            log.Warn().
                Str("client_id", principal.ClientID).
                Str("required_role", role).
                Str("path", c.Request.URL.Path).
                Msg("Insufficient permissions")
            utils.AbortWithError(c, err)
            return
        }

        c.Next()
    }
}
