package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/steveyeow/academi/internal/config"
	"github.com/steveyeow/academi/internal/pkg/errcode"
	"github.com/steveyeow/academi/internal/pkg/jwt"
	"github.com/steveyeow/academi/internal/pkg/password"
	"github.com/steveyeow/academi/internal/pkg/response"
)

type AuthHandler struct {
	cfg config.AdminConfig
}

func NewAuthHandler(cfg config.AdminConfig) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

type tokenRequest struct {
	Password string `json:"password"`
}

// Token exchanges the admin password for a short-lived bearer token.
func (h *AuthHandler) Token(c *gin.Context) {
	if h.cfg.PasswordHash == "" {
		response.Error(c, errcode.ErrUnauthorized, "admin access disabled")
		return
	}
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if err := password.Compare(h.cfg.PasswordHash, req.Password); err != nil {
		response.Error(c, errcode.ErrUnauthorized, "invalid password")
		return
	}
	ttl := time.Duration(h.cfg.JWTTTLHours) * time.Hour
	token, err := jwt.GenerateToken("admin", []byte(h.cfg.JWTSecret), ttl)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token, "expires_in": int64(ttl.Seconds())})
}
