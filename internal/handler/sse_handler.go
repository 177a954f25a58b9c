package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_paygate/internal/sse"
)

// SSEHandler handles Server-Sent Events for admin real-time updates.
type SSEHandler struct {
	hub *sse.Hub
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Stream handles GET /admin/events. Authentication and the admin role are
// enforced by middleware before this runs.
func (h *SSEHandler) Stream(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	// SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	sub := h.hub.Subscribe(principal.ClientID)
	defer func() {
		h.hub.Unsubscribe(sub)
		log.Info().
			Str("stream_id", sub.ID).
			Str("client_id", sub.ClientID).
			Int64("dropped_events", sub.Dropped()).
			Msg("Admin payment stream closed")
	}()

	c.SSEvent("connected", gin.H{
		"streamId":  sub.ID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	c.Writer.Flush()

	log.Info().Str("stream_id", sub.ID).Str("client_id", sub.ClientID).Msg("Admin payment stream opened")

	// Stream events
	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-sub.Events:
			if !ok {
				return false
			}
			c.SSEvent("payment", string(data))
			return true
		case <-time.After(30 * time.Second):
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
