package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key for the request ID.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware threads a correlation ID through every request. An
// incoming X-Request-ID is honored so a screen retrying a failed fetch can
// reuse its ID and the retry correlates with the original in the logs.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}

// RequestID returns the request's correlation ID, or "" when the
// middleware did not run.
func RequestID(c *gin.Context) string {
	val, _ := c.Get(ContextKeyRequestID)
	id, _ := val.(string)
	return id
}
