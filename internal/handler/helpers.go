package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/steveyeow/academi/internal/ai"
	"github.com/steveyeow/academi/internal/pkg/errcode"
	"github.com/steveyeow/academi/internal/pkg/errs"
	"github.com/steveyeow/academi/internal/pkg/response"
	"github.com/steveyeow/academi/internal/skill"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get("request_id")
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, ai.ErrNoAvailableProvider):
		response.Error(c, errcode.ErrNoProvider, "no model provider is available; configure at least one API key")
	case errors.Is(err, skill.ErrAllSkillsExhausted):
		response.Error(c, errcode.ErrSkillsExhausted, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, errs.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, errs.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, err.Error())
	case errors.Is(err, errs.ErrConflict):
		response.Error(c, errcode.ErrConflict, err.Error())
	case errors.Is(err, errs.ErrTooMany):
		response.Error(c, errcode.ErrTooMany, "too many requests")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
