package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abiosite/abio-api/pkg/response"
)

// Pinger is satisfied by pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB    Pinger
	Redis func(ctx context.Context) error
}

func NewHealthHandler(db Pinger, redisPing func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{DB: db, Redis: redisPing}
}

// Check GET /api/v1/health reports 503 when a required dependency is down.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true
	if h.DB != nil {
		if err := h.DB.Ping(ctx); err != nil {
			checks["database"] = "down"
			healthy = false
		} else {
			checks["database"] = "up"
		}
	}
	if h.Redis != nil {
		if err := h.Redis(ctx); err != nil {
			checks["redis"] = "down"
			healthy = false
		} else {
			checks["redis"] = "up"
		}
	}
	if !healthy {
		response.Error(c, http.StatusServiceUnavailable, "Service unavailable", checks)
		return
	}
	response.Success(c, http.StatusOK, checks, "OK")
}
