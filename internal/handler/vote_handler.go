package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/steveyeow/academi/internal/pkg/errcode"
	"github.com/steveyeow/academi/internal/pkg/response"
	"github.com/steveyeow/academi/internal/service"
)

type VoteHandler struct {
	discovery *service.DiscoveryService
}

func NewVoteHandler(discovery *service.DiscoveryService) *VoteHandler {
	return &VoteHandler{discovery: discovery}
}

func (h *VoteHandler) List(c *gin.Context) {
	votes, err := h.discovery.Votes(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, votes)
}

type voteRequest struct {
	Title string `json:"title"`
}

func (h *VoteHandler) Create(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		response.Error(c, errcode.ErrInvalid, "title required")
		return
	}
	vote, err := h.discovery.CreateVote(c.Request.Context(), req.Title)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, vote)
}

func (h *VoteHandler) Upvote(c *gin.Context) {
	vote, err := h.discovery.Upvote(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, vote)
}
