package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/abiosite/abio-api/internal/interface/http"
	"github.com/abiosite/abio-api/internal/interface/middleware"
)

// WaitlistModule serves the public join endpoint and, when an operator key
// is configured, the listing behind it.
type WaitlistModule struct {
	Handler     *handlers.WaitlistHandler
	Redis       *redis.Client
	OperatorKey string
}

func NewWaitlistModule(h *handlers.WaitlistHandler, rdb *redis.Client, operatorKey string) *WaitlistModule {
	return &WaitlistModule{Handler: h, Redis: rdb, OperatorKey: operatorKey}
}

func (m *WaitlistModule) Register(rg *gin.RouterGroup) {
	rg.POST("/waitlist", middleware.RateLimit(m.Redis, middleware.PerMinute(5, middleware.KeyByIP())), m.Handler.Join)
	if m.OperatorKey != "" {
		rg.GET("/waitlist",
			middleware.RateLimit(m.Redis, middleware.PerMinute(10, middleware.KeyByIP())),
			middleware.RequireOperatorKey(m.OperatorKey),
			m.Handler.List)
	}
}
