package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/config"
	"github.com/abiosite/abio-api/internal/interface/middleware"
	"github.com/abiosite/abio-api/pkg/helpers"
	"github.com/abiosite/abio-api/pkg/metrics"
	"github.com/abiosite/abio-api/pkg/response"
)

// NewEngine returns a gin engine carrying the global middleware chain.
func NewEngine(cfg *config.Config, logger *logrus.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"panic":      recovered,
		}).Error("panic recovered")
		response.Error(c, http.StatusInternalServerError, "Something went wrong!", nil)
	}))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(middleware.AccessLog(logger))
	}

	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.Metrics(m))
	return r
}

// New builds the full HTTP handler: engine, modules and the NoRoute fallback.
func New(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = helpers.NewNopLogger()
		d.Logger = logger
	}
	engine := NewEngine(d.Config, logger, d.Metrics)
	reg := NewRegistry(engine)
	InitModules(reg, d)
	reg.RegisterAll()
	return engine
}
