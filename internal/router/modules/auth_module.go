package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/abiosite/abio-api/internal/interface/http"
	"github.com/abiosite/abio-api/internal/interface/middleware"
)

// AuthModule serves login, logout, email verification, password recovery
// and, when configured, Google sign-in under /auth.
type AuthModule struct {
	Handler *handlers.AuthHandler
	OAuth   *handlers.OAuthHandler // nil disables /auth/google
	Auth    gin.HandlerFunc
	Redis   *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, oauth *handlers.OAuthHandler, auth gin.HandlerFunc, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, OAuth: oauth, Auth: auth, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")

	// Public endpoints with IP-based rate limits
	loginLimiter := middleware.RateLimit(m.Redis, middleware.PerMinute(10, middleware.KeyByIP()))
	codeLimiter := middleware.RateLimit(m.Redis, middleware.PerMinute(30, middleware.KeyByIPAndPath()))
	mailLimiter := middleware.RateLimit(m.Redis, middleware.PerMinute(5, middleware.KeyByIPAndPath()))

	g.POST("/login", loginLimiter, m.Handler.Login)
	g.POST("/logout", m.Handler.Logout)
	g.POST("/verify-email", codeLimiter, m.Handler.VerifyEmail)
	g.POST("/resend-verification-email", mailLimiter, m.Handler.ResendVerification)
	g.POST("/forgot-password", mailLimiter, m.Handler.ForgotPassword)
	g.POST("/reset-password", codeLimiter, m.Handler.ResetPassword)

	g.PATCH("/update-password", m.Auth,
		middleware.RateLimit(m.Redis, middleware.PerMinute(10, middleware.KeyByUserID())),
		m.Handler.UpdatePassword)

	if m.OAuth != nil {
		g.GET("/google", m.OAuth.Start)
		g.GET("/google/callback", m.OAuth.Callback)
	}
}
