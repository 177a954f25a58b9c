package middleware

import (
    "strconv"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/google/uuid"
    "github.com/rs/zerolog/log"

    "github.com/GTDGit/gtd_paygate/internal/metrics"
)

// LoggingMiddleware logs basic request/response details and injects a request_id into context.
func LoggingMiddleware() gin.HandlerFunc {
    return func(c *gin.Context) {
        start := time.Now()
        path := c.Request.URL.Path

        // Generate request ID
        requestID := uuid.New().String()[:8]
        c.Set("request_id", requestID)
        c.Header("X-Request-Id", requestID)

        // Process request
        c.Next()

        // Log after response
        latency := time.Since(start)
        status := c.Writer.Status()

        route := c.FullPath()
        if route == "" {
            route = "unmatched"
        }
        metrics.ObserveHTTP(c.Request.Method, route, strconv.Itoa(status), latency.Seconds())

        log.Info().
            Str("request_id", requestID).
            Str("method", c.Request.Method).
            Str("path", path).
            Int("status", status).
            Dur("latency", latency).
            Str("ip", c.ClientIP()).
            Str("client_id", c.GetString("client_id")).
            Msg("HTTP Request")
    }
}
