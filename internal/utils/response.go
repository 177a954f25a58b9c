package utils

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// HealthResponse is the body of the liveness probe.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// JSON writes data as the response body. Payment endpoints return the record
// itself rather than an envelope.
func JSON(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// Error writes an error response with provided API error code and message.
func Error(c *gin.Context, code int, errCode, message string) {
	c.JSON(code, ErrorResponse{
		Error:     message,
		Code:      errCode,
		RequestID: getRequestID(c),
	})
}

// AbortWithError writes the response for err and stops the handler chain.
// Errors that are not AppErrors are logged and reported as internal errors.
func AbortWithError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		Error(c, StatusFor(err), appErr.Code, appErr.Message)
		c.Abort()
		return
	}

	log.Error().Err(err).Str("request_id", getRequestID(c)).Str("path", c.Request.URL.Path).Msg("Unhandled error")
	Error(c, 500, "INTERNAL_ERROR", "Internal server error")
	c.Abort()
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}

// NowISO returns the current UTC time in ISO 8601 format.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
