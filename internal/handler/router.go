package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/steveyeow/academi/internal/middleware"
	"github.com/steveyeow/academi/internal/pkg/response"
)

type RouterDeps struct {
	Auth           *AuthHandler
	Agents         *AgentHandler
	Chat           *ChatHandler
	Discovery      *DiscoveryHandler
	Votes          *VoteHandler
	JWTSecret      []byte
	ChatRateWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", health)

	api.POST("/auth/token", deps.Auth.Token)

	api.GET("/agents", deps.Agents.List)
	api.GET("/agents/:id", deps.Agents.Get)
	api.POST("/agents/upload", deps.Agents.Upload)
	api.POST("/agents/topic", deps.Agents.CreateTopic)
	api.GET("/agents/:id/questions", deps.Agents.Questions)
	api.GET("/agents/:id/messages", deps.Chat.Messages)

	chatGroup := api.Group("")
	if deps.ChatRateWindow > 0 {
		chatGroup.Use(middleware.RateLimit(deps.ChatRateWindow))
	}
	chatGroup.POST("/agents/:id/chat", deps.Chat.Chat)
	chatGroup.POST("/chat", deps.Chat.GlobalChat)
	chatGroup.POST("/discover", deps.Discovery.Discover)
	chatGroup.POST("/search-book", deps.Discovery.SearchBook)

	api.GET("/topics", deps.Discovery.Topics)

	api.GET("/votes", deps.Votes.List)
	api.POST("/votes", deps.Votes.Create)
	api.POST("/votes/:id/upvote", deps.Votes.Upvote)

	adminGroup := api.Group("")
	adminGroup.Use(middleware.AdminAuth(deps.JWTSecret))
	adminGroup.DELETE("/agents/:id", deps.Agents.Delete)
}

func health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}
