package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"library-backend/internal/domains/notification"
	"library-backend/pkg/logger"
)

// EventsHandler exposes the inventory change feed as a Server-Sent Events
// stream. Each connected client is one hub subscriber; the subscription
// lives exactly as long as the HTTP connection.
type EventsHandler struct {
	hub *notification.Hub
}

func NewEventsHandler(hub *notification.Hub) *EventsHandler {
	return &EventsHandler{
		hub: hub,
	}
}

// Stream handles GET /events.
//
// The client receives one "change" SSE message per committed inventory
// mutation, JSON-encoded with its kind discriminator. No history is
// replayed: the stream starts with the first mutation committed after
// the subscription.
func (h *EventsHandler) Stream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	logger.Info("event stream opened", map[string]interface{}{
		"subscriber_id": sub.ID.String(),
		"request_id":    c.GetString("request_id"),
	})

	clientGone := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				// Evicted or hub shut down
				return false
			}
			c.SSEvent("change", event)
			return true
		case <-clientGone:
			return false
		}
	})

	logger.Info("event stream closed", map[string]interface{}{
		"subscriber_id": sub.ID.String(),
	})
}
