package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_paygate/internal/metrics"
	"github.com/GTDGit/gtd_paygate/internal/middleware"
	"github.com/GTDGit/gtd_paygate/internal/service"
	"github.com/GTDGit/gtd_paygate/internal/utils"
)

type AuthHandler struct {
	authService *service.AuthService
	rateLimiter *middleware.InvalidAuthRateLimiter
}

func NewAuthHandler(authService *service.AuthService, rateLimiter *middleware.InvalidAuthRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, rateLimiter: rateLimiter}
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// IssueToken handles POST /auth/token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	// A missing or unparsable body is treated as absent credentials.
	_ = c.ShouldBindJSON(&req)

	token, err := h.authService.Issue(c.Request.Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		metrics.IncToken("rejected")
		if utils.KindOf(err) == utils.KindAuthentication && h.rateLimiter != nil && !h.rateLimiter.Allow(c.ClientIP()) {
			utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
			return
		}
		utils.AbortWithError(c, err)
		return
	}

	metrics.IncToken("issued")
	c.Set("client_id", req.ClientID)
	utils.JSON(c, 200, token)
}
