package api

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"phPortfolio/internal/contact"
	"phPortfolio/internal/portfolio"
	"phPortfolio/internal/render"
	"phPortfolio/internal/store"
	"phPortfolio/internal/theme"
)

// PublicHandler 提供公开站点读取的数据；渲染结果缓存到下一次变更为止。
type PublicHandler struct {
	store    *store.Service
	cache    *cache.Cache
	opts     render.Options
	version  atomic.Uint64
	snapshot func() (theme.Config, portfolio.Content)
}

func NewPublicHandler(s *store.Service, ttl time.Duration) *PublicHandler {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PublicHandler{
		store:    s,
		cache:    cache.New(ttl, 2*ttl),
		opts:     render.DefaultOptions(),
		snapshot: s.Snapshot,
	}
}

// Invalidate 作为 Store 变更钩子：先推进版本再清空缓存。
func (h *PublicHandler) Invalidate(context.Context, store.Change) {
	h.version.Add(1)
	h.cache.Flush()
}

// page 的缓存键带版本号；版本必须在取快照之前读取，
// 这样与变更并发构建出的旧页面只会落在无人再读的旧键下。
func (h *PublicHandler) page() render.Page {
	key := "page:" + strconv.FormatUint(h.version.Load(), 10)
	if v, ok := h.cache.Get(key); ok {
		if page, ok := v.(render.Page); ok {
			return page
		}
	}
	th, content := h.snapshot()
	page := render.BuildPage(th, content, h.opts)
	h.cache.SetDefault(key, page)
	return page
}

// GetPortfolio 返回渲染好的公开页面视图。
func (h *PublicHandler) GetPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, h.page())
}

func (h *PublicHandler) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Theme())
}

// GetThemeCSS 返回 :root 变量样式表。
func (h *PublicHandler) GetThemeCSS(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(h.store.Theme().Stylesheet()))
}

// ComposeContact 生成发往站点联系邮箱的撰写链接，本身不发送任何邮件。
func (h *PublicHandler) ComposeContact(c *gin.Context) {
	var msg contact.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		ParseError(c, err.Error())
		return
	}
	to := h.store.Content().Contact.Email
	url, err := contact.ComposeURL(to, msg)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
