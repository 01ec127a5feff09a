package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/prudhivi99/guitar-store/internal/models"
)

// DefaultHeartbeat is the interval between SSE keep-alive comments.
const DefaultHeartbeat = 25 * time.Second

// Subscriber is the read side of the notification bus.
type Subscriber interface {
	Subscribe(ctx context.Context) <-chan models.ChangeEvent
}

// PushHandler streams change events to browsers.
type PushHandler struct {
	bus       Subscriber
	heartbeat time.Duration
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

func NewPushHandler(bus Subscriber, heartbeat time.Duration, origins []string, logger *slog.Logger) *PushHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &PushHandler{
		bus:       bus,
		heartbeat: heartbeat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowOrigin(origins),
		},
		logger: logger,
	}
}

// Stream serves every event as server-sent events.
func (h *PushHandler) Stream(c *gin.Context) {
	h.stream(c, "")
}

// StreamResource serves only the events of one resource, e.g. "product".
func (h *PushHandler) StreamResource(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.stream(c, resource)
	}
}

func (h *PushHandler) stream(c *gin.Context, resource string) {
	ctx := c.Request.Context()
	events := h.bus.Subscribe(ctx)
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			_, err := io.WriteString(w, ": ping\n\n")
			return err == nil
		case ev, ok := <-events:
			if !ok {
				// Evicted or shutting down; the browser reconnects.
				return false
			}
			if resource != "" && ev.Resource() != resource {
				return true
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.Warn("encoding change event", "kind", ev.Kind, "error", err)
				return true
			}
			_, err = io.WriteString(w, "data: "+string(data)+"\n\n")
			return err == nil
		}
	})
}

// WebSocket upgrades the connection and writes every event as a JSON text
// frame. Client messages are read only to notice the close.
func (h *PushHandler) WebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	events := h.bus.Subscribe(ctx)
	ping := time.NewTicker(h.heartbeat)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			deadline := time.Now().Add(10 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

func allowOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if o == "*" || o == origin {
				return true
			}
		}
		// Same-origin pages.
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}
