package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/steveyeow/academi/internal/pkg/errcode"
	"github.com/steveyeow/academi/internal/pkg/response"
	"github.com/steveyeow/academi/internal/service"
)

const maxUploadBytes = 20 * 1024 * 1024

type AgentHandler struct {
	agents    *service.AgentService
	questions *service.QuestionService
}

func NewAgentHandler(agents *service.AgentService, questions *service.QuestionService) *AgentHandler {
	return &AgentHandler{agents: agents, questions: questions}
}

func (h *AgentHandler) List(c *gin.Context) {
	books, err := h.agents.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, books)
}

func (h *AgentHandler) Get(c *gin.Context) {
	book, err := h.agents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, book)
}

func (h *AgentHandler) Delete(c *gin.Context) {
	if err := h.agents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// Upload accepts a plain-text or markdown file whose text has already been
// extracted by the caller. The agent starts indexing immediately.
func (h *AgentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "file is required")
		return
	}
	if file.Size > maxUploadBytes {
		response.Error(c, errcode.ErrInvalid, "file exceeds "+formatUploadLimit(maxUploadBytes))
		return
	}
	ext := strings.ToLower(fileExtOf(file.Filename))
	if ext != ".txt" && ext != ".md" && ext != ".markdown" {
		response.Error(c, errcode.ErrInvalid, "only .txt and .md uploads are supported")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "failed to open file")
		return
	}
	defer opened.Close()
	raw, err := io.ReadAll(io.LimitReader(opened, maxUploadBytes+1))
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "failed to read file")
		return
	}
	if _, err := opened.Seek(0, io.SeekStart); err != nil {
		response.Error(c, errcode.ErrUploadFailed, "failed to rewind file")
		return
	}
	book, err := h.agents.CreateUploadBook(c.Request.Context(), file.Filename, opened, file.Size, string(raw))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, book)
}

type topicRequest struct {
	Topic    string `json:"topic"`
	Language string `json:"language"`
}

func (h *AgentHandler) CreateTopic(c *gin.Context) {
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	book, err := h.agents.CreateTopicBook(c.Request.Context(), req.Topic, req.Language)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, book)
}

func (h *AgentHandler) Questions(c *gin.Context) {
	questions, err := h.questions.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, questions)
}

func fileExtOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return filename[idx:]
}
