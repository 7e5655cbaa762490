package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/abiosite/abio-api/pkg/response"
)

const msgTooManyRequests = "Too many requests from this IP, please try again later."

// KeyFunc names the bucket a request is counted in.
type KeyFunc func(c *gin.Context) string

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ClientIP(c)
	}
}

// KeyByIPAndPath gives every route its own budget per client. The route
// pattern is used, so /links/1/click and /links/2/click share a bucket.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		return "rl:path:" + path + ":ip:" + ClientIP(c)
	}
}

// KeyByUserID must run after Authenticate; anonymous requests fall back to the IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return "rl:user:" + uid
		}
		return "rl:user:anon:ip:" + ClientIP(c)
	}
}

// Limit is one fixed-window budget.
type Limit struct {
	Max    int
	Window time.Duration
	Key    KeyFunc
	Allow  AllowFunc
}

// PerMinute is the window every route in this service uses.
func PerMinute(max int, key KeyFunc) Limit {
	return Limit{Max: max, Window: time.Minute, Key: key}
}

// Bypass returns a copy of l that lets requests matched by allow through.
func (l Limit) Bypass(allow AllowFunc) Limit {
	l.Allow = allow
	return l
}

// Counts the hit, opens the window on the first one and reports the time left.
var hitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RateLimit enforces l against Redis and sets the X-RateLimit-* headers.
// Without a client it is a no-op, and a Redis error lets the request through.
func RateLimit(rdb *redis.Client, l Limit) gin.HandlerFunc {
	if rdb == nil || l.Max <= 0 || l.Window <= 0 || l.Key == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skip := anyAllow(preflight, l.Allow)

	return func(c *gin.Context) {
		if skip(c) {
			c.Next()
			return
		}

		res, err := hitScript.Run(c.Request.Context(), rdb, []string{l.Key(c)}, l.Window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond

		reset := 0
		if ttl > 0 {
			reset = int((ttl + time.Second - 1) / time.Second)
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(l.Max-count, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))

		if count > l.Max {
			if reset > 0 {
				c.Header("Retry-After", strconv.Itoa(reset))
			}
			response.Error(c, http.StatusTooManyRequests, msgTooManyRequests, nil)
			return
		}
		c.Next()
	}
}
