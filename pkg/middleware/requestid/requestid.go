package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the request ID across service boundaries.
const Header = "X-Request-ID"

const contextKey = "request_id"

// maxInboundLen caps caller-supplied IDs so log lines stay bounded.
const maxInboundLen = 64

// Middleware tags every request with an ID. An ID supplied by the caller is
// kept so the same value can be traced through proxy hops.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" || len(id) > maxInboundLen {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)

		c.Next()
	}
}

// Value returns the request ID stored in the Gin context, or "" when the
// middleware did not run.
func Value(c *gin.Context) string {
	v, exists := c.Get(contextKey)
	if !exists {
		return ""
	}
	id, _ := v.(string)
	return id
}
