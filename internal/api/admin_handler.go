package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"phPortfolio/internal/portfolio"
	"phPortfolio/internal/render"
	"phPortfolio/internal/store"
	"phPortfolio/internal/theme"
)

// TaskEnqueuer 是 asynq.Client 中处理器用到的部分。
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AdminHandler 处理后台对主题与内容的编辑。每个请求都是一次原子变更。
type AdminHandler struct {
	store   *store.Service
	tasks   TaskEnqueuer
	preview render.Options
}

func NewAdminHandler(s *store.Service, enqueuer TaskEnqueuer, preview render.Options) *AdminHandler {
	return &AdminHandler{store: s, tasks: enqueuer, preview: preview}
}

// mutate 在 Store 中执行一次内容变更，成功时以 status 返回 fn 的结果。
func (h *AdminHandler) mutate(c *gin.Context, section string, status int, fn func(*portfolio.Content) (any, error)) {
	var out any
	_, err := h.store.UpdateContent(c.Request.Context(), section, func(content *portfolio.Content) error {
		v, err := fn(content)
		out = v
		return err
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	if out == nil {
		c.Status(status)
		return
	}
	c.JSON(status, out)
}

// GetContent 返回完整的可编辑内容，管理员密码除外。
func (h *AdminHandler) GetContent(c *gin.Context) {
	th, content := h.store.Snapshot()
	users := userViews(content.AdminUsers)
	content.AdminUsers = nil
	c.JSON(http.StatusOK, gin.H{
		"theme":         th,
		"portfolioData": content,
		"users":         users,
	})
}

func (h *AdminHandler) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Theme())
}

// UpdateTheme 合并颜色与暗色开关；任一颜色非法时整体拒绝。
func (h *AdminHandler) UpdateTheme(c *gin.Context) {
	var patch theme.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		ParseError(c, err.Error())
		return
	}
	th, err := h.store.UpdateTheme(c.Request.Context(), func(cfg *theme.Config) error {
		merged, err := cfg.Merge(patch)
		if err != nil {
			return err
		}
		*cfg = merged
		return nil
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, th)
}

func (h *AdminHandler) ToggleDark(c *gin.Context) {
	th, err := h.store.UpdateTheme(c.Request.Context(), func(cfg *theme.Config) error {
		*cfg = cfg.ToggleDark()
		return nil
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, th)
}

func (h *AdminHandler) ReplaceHero(c *gin.Context) {
	var hero portfolio.Hero
	if err := c.ShouldBindJSON(&hero); err != nil {
		ParseError(c, err.Error())
		return
	}
	h.mutate(c, "hero", http.StatusOK, func(content *portfolio.Content) (any, error) {
		content.ReplaceHero(hero)
		return content.Hero, nil
	})
}

type characterImageRequest struct {
	Src string `json:"src"`
}

func (h *AdminHandler) AddCharacterImage(c *gin.Context) {
	var req characterImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ParseError(c, err.Error())
		return
	}
	h.mutate(c, "hero", http.StatusCreated, func(content *portfolio.Content) (any, error) {
		if err := content.AddCharacterImage(req.Src); err != nil {
			return nil, err
		}
		return content.Hero.CharacterImages, nil
	})
}

func (h *AdminHandler) RemoveCharacterImage(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		BadRequest(c, "invalid character image index")
		return
	}
	h.mutate(c, "hero", http.StatusOK, func(content *portfolio.Content) (any, error) {
		if err := content.RemoveCharacterImage(index); err != nil {
			return nil, err
		}
		return content.Hero.CharacterImages, nil
	})
}

func (h *AdminHandler) ReplaceContact(c *gin.Context) {
	var ct portfolio.Contact
	if err := c.ShouldBindJSON(&ct); err != nil {
		ParseError(c, err.Error())
		return
	}
	h.mutate(c, "contact", http.StatusOK, func(content *portfolio.Content) (any, error) {
		content.ReplaceContact(ct)
		return content.Contact, nil
	})
}

type yearRatioRequest struct {
	YearRatio int `json:"yearRatio"`
}

// SetYearRatio 设置时间轴每年的像素数；0 回落到默认值。
func (h *AdminHandler) SetYearRatio(c *gin.Context) {
	var req yearRatioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ParseError(c, err.Error())
		return
	}
	h.mutate(c, "yearRatio", http.StatusOK, func(content *portfolio.Content) (any, error) {
		if err := content.SetYearRatio(req.YearRatio); err != nil {
			return nil, err
		}
		return gin.H{"yearRatio": content.YearRatio}, nil
	})
}
