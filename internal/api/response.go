package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/auth"
	"phPortfolio/internal/errcode"
	"phPortfolio/internal/layout"
	"phPortfolio/internal/portfolio"
	"phPortfolio/internal/store"
	"phPortfolio/internal/theme"
)

func Error(c *gin.Context, status, code int, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": errcode.Credential})
}

func Unauthorized(c *gin.Context, msg string) {
	Error(c, http.StatusUnauthorized, errcode.Credential, msg)
}
func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, errcode.Validation, msg) }
func ParseError(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, errcode.Parse, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, errcode.LookupMiss, msg) }
func Conflict(c *gin.Context, msg string)   { Error(c, http.StatusConflict, errcode.Validation, msg) }
func Internal(c *gin.Context, msg string)   { Error(c, http.StatusInternalServerError, errcode.SystemError, msg) }

// RespondError 按错误类别映射 HTTP 状态与错误码；失败的操作不会改变状态，客户端可直接重试。
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, portfolio.ErrNotFound), errors.Is(err, layout.ErrElementNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, portfolio.ErrLastAdmin), errors.Is(err, portfolio.ErrDuplicateUsername):
		Conflict(c, err.Error())
	case errors.Is(err, store.ErrMalformedImport):
		ParseError(c, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(c, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrNotAuthenticated):
		Unauthorized(c, "unauthorized")
	case errors.Is(err, portfolio.ErrValidation),
		errors.Is(err, portfolio.ErrUnknownSection),
		errors.Is(err, theme.ErrInvalidColor),
		errors.Is(err, layout.ErrInvalidType),
		errors.Is(err, layout.ErrInvalidGeometry),
		errors.Is(err, layout.ErrUnknownPreset):
		BadRequest(c, err.Error())
	default:
		middleware.LoggerFromContext(c).Error("request failed", slog.Any("error", err))
		Internal(c, "internal error")
	}
}
