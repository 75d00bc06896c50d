package traceid

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the trace id from the edge through every downstream hop.
const Header = "X-Trace-Id"

const contextKey = "trace_id"

// Middleware assigns a trace id to each inbound request. An id supplied by a
// trusted upstream hop is reused so the whole call chain shares one value.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = generateID()
		}

		c.Set(contextKey, id)
		c.Request.Header.Set(Header, id)
		c.Writer.Header().Set(Header, id)

		c.Next()
	}
}

// Value returns the trace id stored in the Gin context.
func Value(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if v, exists := c.Get(contextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func generateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
