package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/steveyeow/academi/internal/ai"
	"github.com/steveyeow/academi/internal/model"
	"github.com/steveyeow/academi/internal/pkg/errcode"
	"github.com/steveyeow/academi/internal/pkg/response"
	"github.com/steveyeow/academi/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Message string `json:"message"`
	TopK    int    `json:"top_k"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		response.Error(c, errcode.ErrInvalid, "message required")
		return
	}
	answer, err := h.chat.ChatWithBook(c.Request.Context(), c.Param("id"), req.Message, req.TopK)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, answer)
}

type historyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type globalChatRequest struct {
	Message string            `json:"message"`
	TopK    int               `json:"top_k"`
	BookIDs []string          `json:"book_ids"`
	Books   []service.BookRef `json:"books"`
	History []historyMessage  `json:"history"`
}

func (h *ChatHandler) GlobalChat(c *gin.Context) {
	var req globalChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		response.Error(c, errcode.ErrInvalid, "message required")
		return
	}
	history := make([]ai.Message, 0, len(req.History))
	for _, msg := range req.History {
		role := msg.Role
		if role != model.MessageRoleAssistant {
			role = model.MessageRoleUser
		}
		history = append(history, ai.Message{Role: role, Content: msg.Content})
	}
	answer, err := h.chat.GlobalChat(c.Request.Context(), &service.GlobalChatInput{
		Message: req.Message,
		TopK:    req.TopK,
		BookIDs: req.BookIDs,
		Books:   req.Books,
		History: history,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, answer)
}

func (h *ChatHandler) Messages(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, errcode.ErrInvalid, "invalid limit")
			return
		}
		limit = parsed
	}
	messages, err := h.chat.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, messages)
}
