package handler

import (
    "github.com/gin-gonic/gin"

    "github.com/GTDGit/gtd_paygate/internal/utils"
)

// HealthHandler provides health endpoint.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
    return &HealthHandler{}
}

// GetHealth handles GET /health. It requires no authentication.
func (h *HealthHandler) GetHealth(c *gin.Context) {
    utils.JSON(c, 200, utils.HealthResponse{
        Status:    "UP",
        Timestamp: utils.NowISO(),
    })
}
