package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/steveyeow/academi/internal/pkg/ids"
)

const ContextRequestIDKey = "request_id"

// RequestID tags every request so log lines from the answer pipeline can be
// tied back to the HTTP call that started them.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = ids.New()
		}
		c.Set(ContextRequestIDKey, requestID)
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Next()
	}
}
