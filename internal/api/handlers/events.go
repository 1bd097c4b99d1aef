package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/api/response"
	"github.com/dhima/edge-cache/internal/logging"
	"github.com/dhima/edge-cache/internal/notify"
)

// DefaultKeepAlive is the interval between SSE keepalive comments.
const DefaultKeepAlive = 15 * time.Second

const streamQueueSize = 16

// EventSource hands out event subscriptions.
type EventSource interface {
	Subscribe(size int) (<-chan notify.Event, func())
}

// EventStreamHandler streams notifier events as server-sent events.
type EventStreamHandler struct {
	logger    logging.Logger
	source    EventSource
	keepAlive time.Duration
}

// NewEventStreamHandler creates a new event stream handler. A non-positive
// keepAlive selects DefaultKeepAlive.
func NewEventStreamHandler(logger logging.Logger, source EventSource, keepAlive time.Duration) *EventStreamHandler {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return &EventStreamHandler{
		logger:    logger.With(zap.String("handler", "event_stream")),
		source:    source,
		keepAlive: keepAlive,
	}
}

// Stream godoc
// @Summary Stream cache events
// @Description Server-sent event stream. Each registered observer publishes its full result set as an event named after the concern, e.g. "app-configs-updated".
// @Tags Events
// @Produce text/event-stream
// @Success 200 {object} notify.Event "One SSE data frame per event"
// @Router /api/v1/events/stream [get]
func (h *EventStreamHandler) Stream(c *gin.Context) {
	events, cancel := h.source.Subscribe(streamQueueSize)
	defer cancel()

	requestID := response.GetRequestID(c)
	h.logger.Info("event stream opened", zap.String("request_id", requestID))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, ev)
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": keepalive\n\n")
			return err == nil
		}
	})

	h.logger.Info("event stream closed", zap.String("request_id", requestID))
}
