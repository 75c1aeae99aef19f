package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/auth"
	"phPortfolio/internal/errcode"
	"phPortfolio/internal/metrics"
	"phPortfolio/internal/store"
)

// AuthHandler 处理后台登录、退出与会话查询。
type AuthHandler struct {
	store    *store.Service
	sessions *auth.Sessions
	limiter  *auth.LoginLimiter
}

func NewAuthHandler(s *store.Service, sessions *auth.Sessions, limiter *auth.LoginLimiter) *AuthHandler {
	return &AuthHandler{store: s, sessions: sessions, limiter: limiter}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 在当前管理员列表中匹配凭据，成功后打开会话。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ParseError(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.String("username", req.Username))

	if h.limiter != nil && !h.limiter.Allow(ctx, c.ClientIP(), req.Username) {
		metrics.RecordLogin("rate_limited")
		Error(c, http.StatusTooManyRequests, errcode.Credential, "rate limit exceeded")
		return
	}

	user, err := auth.Authenticate(h.store.Content().AdminUsers, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Info("login failed: credential mismatch")
			metrics.RecordLogin("failure")
		}
		RespondError(c, err)
		return
	}

	session, err := h.sessions.Open(ctx, user.Username)
	if err != nil {
		logger.Error("open session failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	metrics.RecordLogin("success")
	logger.Info("admin logged in")
	c.JSON(http.StatusOK, session)
}

// Logout 关闭当前会话。
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Close(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Session 返回请求携带的令牌是否仍然有效，未登录不视为错误。
func (h *AuthHandler) Session(c *gin.Context) {
	claims, err := h.sessions.Validate(c.Request.Context(), middleware.BearerToken(c))
	if err != nil {
		if !errors.Is(err, auth.ErrNotAuthenticated) {
			middleware.LoggerFromContext(c).Warn("session lookup failed", slog.Any("error", err))
		}
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"username":      claims.Username,
		"expiresAt":     claims.ExpiresAt.Time,
	})
}
