package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/layout"
	"phPortfolio/internal/portfolio"
	"phPortfolio/internal/render"
	"phPortfolio/internal/tasks"
)

// CreateProject 追加一个使用模板字段的新项目。
func (h *AdminHandler) CreateProject(c *gin.Context) {
	id := h.store.NewID()
	h.mutate(c, "projects", http.StatusCreated, func(content *portfolio.Content) (any, error) {
		return content.AddProject(id), nil
	})
}

func (h *AdminHandler) UpdateProject(c *gin.Context) {
	var patch portfolio.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		ParseError(c, err.Error())
		return
	}
	id := c.Param("id")
	h.mutate(c, "projects", http.StatusOK, func(content *portfolio.Content) (any, error) {
		if err := content.UpdateProject(id, patch); err != nil {
			return nil, err
		}
		p, _ := content.FindProject(id)
		return *p, nil
	})
}

func (h *AdminHandler) DeleteProject(c *gin.Context) {
	id := c.Param("id")
	h.mutate(c, "projects", http.StatusNoContent, func(content *portfolio.Content) (any, error) {
		return nil, content.DeleteProject(id)
	})
}

// PreviewProject 以后台预览容器的尺寸渲染单个项目，几何计算与公开页一致。
func (h *AdminHandler) PreviewProject(c *gin.Context) {
	content := h.store.Content()
	p, _ := content.FindProject(c.Param("id"))
	if p == nil {
		NotFound(c, "project not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"options": h.preview,
		"project": render.BuildProject(*p, h.preview),
	})
}

// SnapshotProject 提交一个项目截图任务，结果通过 admin_notify 推送。
func (h *AdminHandler) SnapshotProject(c *gin.Context) {
	id := c.Param("id")
	content := h.store.Content()
	if p, _ := content.FindProject(id); p == nil {
		NotFound(c, "project not found")
		return
	}

	task, err := tasks.NewProjectPreviewTask(id, middleware.GetCorrelationID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	info, err := h.tasks.EnqueueContext(c.Request.Context(), task)
	if err != nil {
		middleware.LoggerFromContext(c).Error("enqueue project preview failed", slog.Any("error", err))
		Internal(c, "failed to enqueue preview task")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"task_id": info.ID})
}

type addElementRequest struct {
	Type layout.ElementType `json:"type"`
}

func (h *AdminHandler) AddElement(c *gin.Context) {
	var req addElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ParseError(c, err.Error())
		return
	}
	projectID := c.Param("id")
	elementID := h.store.NewID()
	h.mutate(c, "projects", http.StatusCreated, func(content *portfolio.Content) (any, error) {
		return content.AddElement(projectID, elementID, req.Type)
	})
}

// UpdateElement 只替换请求中出现的字段。
func (h *AdminHandler) UpdateElement(c *gin.Context) {
	var patch layout.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		ParseError(c, err.Error())
		return
	}
	projectID, elementID := c.Param("id"), c.Param("eid")
	h.mutate(c, "projects", http.StatusOK, func(content *portfolio.Content) (any, error) {
		return content.UpdateElement(projectID, elementID, patch)
	})
}

func (h *AdminHandler) DeleteElement(c *gin.Context) {
	projectID, elementID := c.Param("id"), c.Param("eid")
	h.mutate(c, "projects", http.StatusNoContent, func(content *portfolio.Content) (any, error) {
		return nil, content.DeleteElement(projectID, elementID)
	})
}

type presetRequest struct {
	Position string `json:"position"`
}

// ApplyPreset 把元素移动到九宫格预设位置之一。
func (h *AdminHandler) ApplyPreset(c *gin.Context) {
	var req presetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ParseError(c, err.Error())
		return
	}
	anchor, err := layout.ParseAnchor(req.Position)
	if err != nil {
		RespondError(c, err)
		return
	}
	projectID, elementID := c.Param("id"), c.Param("eid")
	h.mutate(c, "projects", http.StatusOK, func(content *portfolio.Content) (any, error) {
		return content.ApplyPreset(projectID, elementID, anchor)
	})
}
