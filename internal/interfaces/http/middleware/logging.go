package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// skipPaths are high-frequency probe paths excluded from request logs.  They
// are still counted in metrics.
var skipPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// RequestLogger logs every request with zap and records the HTTP metrics.
// The metrics argument may be nil.
func RequestLogger(log logging.Logger, metrics *prometheus.Metrics) gin.HandlerFunc {
	log = log.Named("http")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		// Route template, not the raw URL, to bound label cardinality.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()

		if metrics != nil {
			metrics.ObserveHTTPRequest(c.Request.Method, path, status, duration)
		}
		if skipPaths[path] {
			return
		}

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Duration("duration", duration),
			logging.String("remote_addr", c.ClientIP()),
			logging.Int("bytes", c.Writer.Size()),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
