package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prudhivi99/guitar-store/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID reuses the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey{}, id))
		c.Next()
	}
}

// Logging writes one line per request and records the request metrics.
// m may be nil.
func Logging(logger *slog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if m != nil {
			m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
			m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())
		}

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"bytes", c.Writer.Size(),
			"latency_ms", elapsed.Milliseconds(),
			"request_id", RequestIDFromContext(c.Request.Context()),
		)
	}
}

// Elapsed reports handler time in X-Elapsed-Time for API requests and in
// X-Server-Timing for pages. It relies on Conditional buffering the body, so
// it must run inside it.
func Elapsed() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if streaming(c) {
			return
		}
		ms := float64(time.Since(start).Microseconds()) / 1000
		if isAPIRequest(c.Request) {
			c.Header("X-Elapsed-Time", fmt.Sprintf("%.2fms", ms))
			return
		}
		c.Header("X-Server-Timing", "total;dur="+strconv.FormatFloat(ms, 'f', 2, 64))
	}
}

// Recovery turns a handler panic into a 500 rendered by ErrorMapper.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		_ = c.Error(fmt.Errorf("panic: %v", rec))
		c.Abort()
	})
}

// streaming reports whether the matched route keeps the connection open.
func streaming(c *gin.Context) bool {
	p := c.FullPath()
	return strings.HasSuffix(p, "/updates") || p == "/events/ws"
}
