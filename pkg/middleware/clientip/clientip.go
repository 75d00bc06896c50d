package clientip

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// Header is set by the gateway and trusted by downstream services.
const Header = "X-Client-Ip"

const contextKey = "client_ip"

// Middleware resolves the real client address and stamps it on the outbound
// request so downstream services never have to reason about proxy hops.
// Resolution order: first X-Forwarded-For hop, then X-Real-IP, then the
// connection's remote address.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := resolve(c)

		c.Set(contextKey, ip)
		c.Request.Header.Set(Header, ip)

		c.Next()
	}
}

// Value returns the client IP stored in the Gin context, falling back to the
// gateway-propagated header for downstream services.
func Value(c *gin.Context) string {
	if v, exists := c.Get(contextKey); exists {
		if ip, ok := v.(string); ok {
			return ip
		}
	}
	return c.GetHeader(Header)
}

func resolve(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" && !strings.EqualFold(first, "unknown") {
			return first
		}
	}

	if realIP := c.GetHeader("X-Real-IP"); realIP != "" && !strings.EqualFold(realIP, "unknown") {
		return realIP
	}

	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil && host != "" {
		return host
	}

	return "unknown"
}
