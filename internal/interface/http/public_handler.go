package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/internal/application"
	"github.com/abiosite/abio-api/pkg/response"
)

// PublicHandler serves the visitor-facing endpoints; none require a session.
type PublicHandler struct {
	Profiles *application.ProfileService
	Links    *application.LinkService
	Logger   *logrus.Logger
}

func NewPublicHandler(profiles *application.ProfileService, links *application.LinkService, logger *logrus.Logger) *PublicHandler {
	return &PublicHandler{Profiles: profiles, Links: links, Logger: logger}
}

type searchQuery struct {
	Q    string `form:"q" binding:"required,max=100"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

// Profile GET /api/v1/user/:username
func (h *PublicHandler) Profile(c *gin.Context) {
	p, err := h.Profiles.GetPublicProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "Profile found")
}

// TrackClick POST /api/v1/public/:username/links/:id/click and /api/v1/public/links/:id/click
func (h *PublicHandler) TrackClick(c *gin.Context) {
	if err := h.Links.TrackClick(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Click tracked")
}

// Search GET /api/v1/public/search?q=&size=
func (h *PublicHandler) Search(c *gin.Context) {
	var q searchQuery
	if !bindQuery(c, &q) {
		return
	}
	hits, err := h.Profiles.SearchPublicProfiles(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "Profiles found")
}
