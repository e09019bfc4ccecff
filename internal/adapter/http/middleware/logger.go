package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestObserver records request latency; metrics.Collector implements it.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// AccessLog writes one logrus line per request and reports it to observer
// when one is given.
func AccessLog(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		entry := log.WithFields(log.Fields{
			"request_id": GetRequestID(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": float64(elapsed.Microseconds()) / 1000.0,
			"ip":         c.ClientIP(),
		})
		if p, ok := GetPrincipal(c); ok {
			entry = entry.WithField("user_id", p.UserID)
		}
		switch {
		case status >= 500:
			entry.Error("[http] request")
		case status >= 400:
			entry.Warn("[http] request")
		default:
			entry.Info("[http] request")
		}

		if observer != nil {
			observer.ObserveRequest(c.Request.Method, route, status, elapsed)
		}
	}
}
