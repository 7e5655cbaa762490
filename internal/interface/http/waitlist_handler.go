package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/internal/application"
	"github.com/abiosite/abio-api/pkg/response"
)

type WaitlistHandler struct {
	Waitlist *application.WaitlistService
	Logger   *logrus.Logger
}

func NewWaitlistHandler(w *application.WaitlistService, logger *logrus.Logger) *WaitlistHandler {
	return &WaitlistHandler{Waitlist: w, Logger: logger}
}

type waitlistRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email" binding:"required,email"`
}

// Join POST /api/v1/waitlist
func (h *WaitlistHandler) Join(c *gin.Context) {
	var req waitlistRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.Waitlist.Join(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, e, "Successfully joined the waitlist")
}

// List GET /api/v1/waitlist (operator key required)
func (h *WaitlistHandler) List(c *gin.Context) {
	entries, err := h.Waitlist.List(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, entries, "Waitlist entries retrieved successfully")
}
