package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/portfolio"
	"phPortfolio/internal/store"
	"phPortfolio/internal/tasks"
)

// InternalHandler 只服务 Worker 回调，由 InternalSecretMiddleware 保护。
type InternalHandler struct {
	store *store.Service
}

func NewInternalHandler(s *store.Service) *InternalHandler {
	return &InternalHandler{store: s}
}

// ApplyImage 把 Worker 解码后的图片写入上传时确定的那一个字段。
// 目标已被删除时返回 applied=false，不视为错误。
func (h *InternalHandler) ApplyImage(c *gin.Context) {
	var req tasks.ImageApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ParseError(c, err.Error())
		return
	}

	err := h.store.ApplyImage(c.Request.Context(), req.Target, req.Result)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, tasks.ImageApplyResponse{Applied: true})
	case errors.Is(err, portfolio.ErrNotFound):
		middleware.LoggerFromContext(c).Info("image target gone, skipped",
			slog.String("field", string(req.Target.Field)),
			slog.String("project_id", req.Target.ProjectID),
			slog.String("element_id", req.Target.ElementID),
		)
		c.JSON(http.StatusOK, tasks.ImageApplyResponse{Applied: false})
	default:
		RespondError(c, err)
	}
}
