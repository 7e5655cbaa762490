package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/abiosite/abio-api/internal/interface/http"
	"github.com/abiosite/abio-api/internal/interface/middleware"
)

// LinkModule serves the owner's link CRUD. Every route requires a session.
type LinkModule struct {
	Handler *handlers.LinkHandler
	Auth    gin.HandlerFunc
	Redis   *redis.Client
}

func NewLinkModule(h *handlers.LinkHandler, auth gin.HandlerFunc, rdb *redis.Client) *LinkModule {
	return &LinkModule{Handler: h, Auth: auth, Redis: rdb}
}

func (m *LinkModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/links")
	g.Use(m.Auth)
	g.Use(middleware.RateLimit(m.Redis, middleware.PerMinute(120, middleware.KeyByUserID())))
	{
		g.GET("", m.Handler.List)
		g.POST("", m.Handler.Create)
		g.PATCH("/reorder/all", m.Handler.Reorder)
		g.GET("/:id", m.Handler.Get)
		g.PATCH("/:id", m.Handler.Update)
		g.DELETE("/:id", m.Handler.Delete)
		g.PATCH("/:id/icon", m.Handler.UpdateIcon)
	}
}
