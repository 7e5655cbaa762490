package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/abiosite/abio-api/internal/interface/http"
	"github.com/abiosite/abio-api/internal/interface/middleware"
)

// PublicModule serves unauthenticated visitor endpoints.
type PublicModule struct {
	Handler *handlers.PublicHandler
	Redis   *redis.Client
}

func NewPublicModule(h *handlers.PublicHandler, rdb *redis.Client) *PublicModule {
	return &PublicModule{Handler: h, Redis: rdb}
}

func (m *PublicModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/public")

	clickLimiter := middleware.RateLimit(m.Redis, middleware.PerMinute(60, middleware.KeyByIPAndPath()).Bypass(middleware.AllowPrivateIP()))
	searchLimiter := middleware.RateLimit(m.Redis, middleware.PerMinute(30, middleware.KeyByIP()))

	g.POST("/links/:id/click", clickLimiter, m.Handler.TrackClick)
	g.POST("/:username/links/:id/click", clickLimiter, m.Handler.TrackClick)
	g.GET("/search", searchLimiter, m.Handler.Search)
}
