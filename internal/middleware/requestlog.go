package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "requestID"
)

// RequestLogger tags each request with an id and logs its timing. Requests
// slower than slow are flagged.
func RequestLogger(slow time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()

		latency := time.Since(start)
		log.Printf("[PERF] %s %s %s | Status: %d | Time: %v",
			id,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			latency)

		if slow > 0 && latency > slow {
			log.Printf("SLOW REQUEST: %s %s took %v", c.Request.Method, c.Request.URL.Path, latency)
		}
	}
}
