package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/steveyeow/academi/internal/pkg/errcode"
	"github.com/steveyeow/academi/internal/pkg/response"
	"github.com/steveyeow/academi/internal/service"
)

type DiscoveryHandler struct {
	discovery *service.DiscoveryService
}

func NewDiscoveryHandler(discovery *service.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{discovery: discovery}
}

func (h *DiscoveryHandler) Topics(c *gin.Context) {
	response.Success(c, gin.H{"topics": h.discovery.Topics()})
}

type discoverRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

func (h *DiscoveryHandler) Discover(c *gin.Context) {
	var req discoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		response.Error(c, errcode.ErrInvalid, "topic required")
		return
	}
	books, usage, err := h.discovery.DiscoverForTopic(c.Request.Context(), req.Topic, req.Count)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"books": books, "usage": usage})
}

type searchBookRequest struct {
	Query string `json:"query"`
}

func (h *DiscoveryHandler) SearchBook(c *gin.Context) {
	var req searchBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	books, usage, err := h.discovery.SearchBook(c.Request.Context(), req.Query)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"books": books, "usage": usage})
}
