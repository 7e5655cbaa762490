package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AllowFunc reports whether a request skips the limiter.
type AllowFunc func(*gin.Context) bool

// AllowPrivateIP lets loopback and private network clients through, so
// probes from inside the cluster never burn a budget.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		ip := net.ParseIP(ClientIP(c))
		return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
	}
}

// anyAllow combines allow funcs; a nil entry is ignored.
func anyAllow(fns ...AllowFunc) AllowFunc {
	return func(c *gin.Context) bool {
		for _, fn := range fns {
			if fn != nil && fn(c) {
				return true
			}
		}
		return false
	}
}

func preflight(c *gin.Context) bool {
	return c.Request.Method == http.MethodOptions
}
