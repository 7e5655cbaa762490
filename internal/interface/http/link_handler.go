package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/internal/application"
	"github.com/abiosite/abio-api/internal/domain/entity"
	"github.com/abiosite/abio-api/pkg/response"
)

type LinkHandler struct {
	Links  *application.LinkService
	Logger *logrus.Logger
}

func NewLinkHandler(links *application.LinkService, logger *logrus.Logger) *LinkHandler {
	return &LinkHandler{Links: links, Logger: logger}
}

type createLinkRequest struct {
	Title     string `json:"title" binding:"required,min=1,max=100"`
	URL       string `json:"url" binding:"required,http_url"`
	Platform  string `json:"platform" binding:"max=50"`
	IsVisible *bool  `json:"isVisible"`
}

type updateLinkRequest struct {
	Title     *string `json:"title" binding:"omitempty,min=1,max=100"`
	URL       *string `json:"url" binding:"omitempty,http_url"`
	Platform  *string `json:"platform" binding:"omitempty,max=50"`
	IsVisible *bool   `json:"isVisible"`
}

type reorderItem struct {
	ID           string `json:"id" binding:"required,uuid"`
	DisplayOrder *int   `json:"displayOrder" binding:"required,min=0"`
}

type reorderRequest struct {
	Links []reorderItem `json:"links" binding:"required,min=1,dive"`
}

// List GET /api/v1/links
func (h *LinkHandler) List(c *gin.Context) {
	links, err := h.Links.ListLinks(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, links, "Links retrieved successfully")
}

// Get GET /api/v1/links/:id
func (h *LinkHandler) Get(c *gin.Context) {
	l, err := h.Links.GetLink(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, l, "Link retrieved successfully")
}

// Create POST /api/v1/links
func (h *LinkHandler) Create(c *gin.Context) {
	var req createLinkRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.Links.CreateLink(c.Request.Context(), currentUserID(c), application.CreateLinkInput{
		Title:     req.Title,
		URL:       req.URL,
		Platform:  req.Platform,
		IsVisible: req.IsVisible,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, l, "Link created successfully")
}

// Update PATCH /api/v1/links/:id
func (h *LinkHandler) Update(c *gin.Context) {
	var req updateLinkRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.Links.UpdateLink(c.Request.Context(), currentUserID(c), c.Param("id"), application.UpdateLinkInput{
		Title:     req.Title,
		URL:       req.URL,
		Platform:  req.Platform,
		IsVisible: req.IsVisible,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, l, "Link updated successfully")
}

// Delete DELETE /api/v1/links/:id
func (h *LinkHandler) Delete(c *gin.Context) {
	if err := h.Links.DeleteLink(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Link deleted successfully")
}

// Reorder PATCH /api/v1/links/reorder/all {links: [{id, displayOrder}]}
func (h *LinkHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	orders := make([]entity.LinkOrder, 0, len(req.Links))
	for _, it := range req.Links {
		orders = append(orders, entity.LinkOrder{ID: it.ID, DisplayOrder: *it.DisplayOrder})
	}
	if err := h.Links.ReorderLinks(c.Request.Context(), currentUserID(c), orders); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Links reordered successfully")
}

// UpdateIcon PATCH /api/v1/links/:id/icon (multipart field "icon")
func (h *LinkHandler) UpdateIcon(c *gin.Context) {
	up, err := readImage(c, "icon")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	l, err := h.Links.UpdateLinkIcon(c.Request.Context(), currentUserID(c), c.Param("id"), up)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, l, "Link icon updated successfully")
}
