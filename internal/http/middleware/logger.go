package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger prints one line per request. Bodies are never logged.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		role := "-"
		if sess := CurrentSession(c); sess != nil {
			role = string(sess.Role)
		}

		log.Printf("[HTTP] request_id=%s method=%s path=%s status=%d bytes=%d role=%s latency_ms=%.3f ip=%s",
			GetRequestID(c),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			c.Writer.Size(),
			role,
			float64(latency.Microseconds())/1000.0,
			c.ClientIP(),
		)
	}
}
