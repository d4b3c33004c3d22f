package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

var sensitiveHeaders = []string{"authorization", "cookie"}

func scrub(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		lk := strings.ToLower(k)
		redacted := false
		for _, s := range sensitiveHeaders {
			if strings.Contains(lk, s) {
				redacted = true
				break
			}
		}
		if redacted {
			out[k] = "[redacted]"
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

// RequestLogger tags each request with an id and logs its outcome.
// Tokens and cookies never reach the log.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)

		l := log.With(
			zap.String("request_id", reqID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		l.Debug("incoming request",
			zap.String("origin", c.GetHeader("Origin")),
			zap.Any("hdr", scrub(c.Request.Header)),
		)

		ts := time.Now()
		c.Next()

		latency := time.Since(ts)
		status := c.Writer.Status()

		for _, e := range c.Errors {
			l.Error("handler error", zap.Int("status", status), zap.Error(e))
		}

		switch {
		case status >= http.StatusInternalServerError:
			l.Error("completed", zap.Int("status", status), zap.Duration("latency", latency))
		case c.IsAborted():
			l.Warn("aborted", zap.Int("status", status), zap.Duration("latency", latency))
		default:
			l.Info("completed", zap.Int("status", status), zap.Duration("latency", latency))
		}
	}
}
