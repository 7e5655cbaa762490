package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/abiosite/abio-api/internal/interface/middleware"
	"github.com/abiosite/abio-api/pkg/metrics"
)

// DebugModule exposes expvar and the Prometheus registry. It is only
// registered when DEBUG_METRICS_ENABLED is set.
type DebugModule struct {
	Metrics *metrics.Metrics
	Redis   *redis.Client
}

func NewDebugModule(m *metrics.Metrics, rdb *redis.Client) *DebugModule {
	return &DebugModule{Metrics: m, Redis: rdb}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, middleware.PerMinute(120, middleware.KeyByIP()).Bypass(middleware.AllowPrivateIP()))
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	if m.Metrics != nil {
		rg.GET("/debug/metrics", rl, gin.WrapH(m.Metrics.Handler()))
	}
}
