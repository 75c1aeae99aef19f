package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/auth"
)

const (
	adminUsernameKey = "adminUsername"
	sessionTokenKey  = "sessionToken"
)

// SessionMiddleware 校验 Bearer 会话令牌，并将用户名注入上下文。
func SessionMiddleware(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			LoggerFromContext(c).Info("session rejected", slog.Any("error", err))
			abortUnauthorized(c)
			return
		}

		c.Set(adminUsernameKey, claims.Username)
		c.Set(sessionTokenKey, token)
		c.Next()
	}
}

// BearerToken 解析 Authorization 头，格式不符时返回空串。
func BearerToken(c *gin.Context) string {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// AdminUsername 返回当前会话的用户名。
func AdminUsername(c *gin.Context) string {
	return c.GetString(adminUsernameKey)
}

// SessionToken 返回当前请求携带的会话令牌。
func SessionToken(c *gin.Context) string {
	return c.GetString(sessionTokenKey)
}
