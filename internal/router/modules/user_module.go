package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/abiosite/abio-api/internal/interface/http"
	"github.com/abiosite/abio-api/internal/interface/middleware"
)

// UserModule wires the account, profile and display preference routes.
// Public: POST /user/signup, GET /user/check-username, GET /user/:username
// Protected: everything else under /user
type UserModule struct {
	Handler *handlers.UserHandler
	Public  *handlers.PublicHandler
	Auth    gin.HandlerFunc
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, public *handlers.PublicHandler, auth gin.HandlerFunc, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Public: public, Auth: auth, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/user")

	signupLimiter := middleware.RateLimit(m.Redis, middleware.PerMinute(5, middleware.KeyByIP()))
	lookupLimiter := middleware.RateLimit(m.Redis, middleware.PerMinute(60, middleware.KeyByIPAndPath()))

	g.POST("/signup", signupLimiter, m.Handler.Signup)
	g.GET("/check-username", lookupLimiter, m.Handler.CheckUsername)

	auth := g.Group("")
	auth.Use(m.Auth)
	auth.Use(middleware.RateLimit(m.Redis, middleware.PerMinute(120, middleware.KeyByUserID())))
	{
		auth.GET("", m.Handler.Me)
		auth.DELETE("", m.Handler.Delete)

		auth.GET("/profile", m.Handler.GetProfile)
		auth.PATCH("/profile", m.Handler.UpdateProfile)
		auth.PATCH("/profile/avatar", m.Handler.UpdateAvatar)

		auth.GET("/preferences", m.Handler.GetPreferences)
		auth.POST("/preferences/background", m.Handler.UpdateBackground)
		auth.POST("/preferences/fonts", m.Handler.UpdateFont)
		auth.POST("/preferences/corners", m.Handler.UpdateCorner)
		auth.POST("/preferences/theme", m.Handler.SelectTheme)
	}

	g.GET("/:username", m.Public.Profile)
}
