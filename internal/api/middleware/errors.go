package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/errcode"
)

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": errcode.Credential})
}
