package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/auth"
	"phPortfolio/internal/render"
	"phPortfolio/internal/storage"
	"phPortfolio/internal/store"
)

// Deps 汇总路由需要的依赖。
type Deps struct {
	Store          *store.Service
	Sessions       *auth.Sessions
	Limiter        *auth.LoginLimiter
	Redis          redis.UniversalClient
	Storage        storage.ObjectStore
	Tasks          TaskEnqueuer
	Scanner        Scanner
	Logger         *slog.Logger
	InternalSecret string
	AllowedOrigins []string
	Preview        render.Options
	PageCacheTTL   time.Duration
}

// RegisterRoutes 注册 API 路由，并把公开页缓存失效挂到 Store 变更上。
func RegisterRoutes(router *gin.Engine, d Deps) {
	publicHandler := NewPublicHandler(d.Store, d.PageCacheTTL)
	d.Store.OnChange(publicHandler.Invalidate)

	authHandler := NewAuthHandler(d.Store, d.Sessions, d.Limiter)
	adminHandler := NewAdminHandler(d.Store, d.Tasks, d.Preview)
	uploadHandler := NewUploadHandler(d.Store, d.Storage, d.Tasks, d.Scanner)
	internalHandler := NewInternalHandler(d.Store)
	wsHandler := NewWsHandler(d.Redis, d.Sessions, d.Logger, d.AllowedOrigins)
	sessionMiddleware := middleware.SessionMiddleware(d.Sessions)

	v1 := router.Group("/v1")
	{
		v1.GET("/portfolio", publicHandler.GetPortfolio)
		v1.GET("/theme", publicHandler.GetTheme)
		v1.GET("/theme/css", publicHandler.GetThemeCSS)
		v1.POST("/contact/compose", publicHandler.ComposeContact)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", sessionMiddleware, authHandler.Logout)
			authGroup.GET("/session", authHandler.Session)
		}

		// WebSocket 在首条消息中鉴权
		v1.GET("/admin/ws", wsHandler.HandleConnection)

		admin := v1.Group("/admin")
		admin.Use(sessionMiddleware)
		{
			admin.GET("/content", adminHandler.GetContent)

			admin.GET("/theme", adminHandler.GetTheme)
			admin.PUT("/theme", adminHandler.UpdateTheme)
			admin.POST("/theme/toggle", adminHandler.ToggleDark)

			admin.PUT("/hero", adminHandler.ReplaceHero)
			admin.POST("/hero/character-images", adminHandler.AddCharacterImage)
			admin.DELETE("/hero/character-images/:index", adminHandler.RemoveCharacterImage)
			admin.PUT("/contact", adminHandler.ReplaceContact)
			admin.PUT("/year-ratio", adminHandler.SetYearRatio)

			projects := admin.Group("/projects")
			{
				projects.POST("", adminHandler.CreateProject)
				projects.PATCH("/:id", adminHandler.UpdateProject)
				projects.DELETE("/:id", adminHandler.DeleteProject)
				projects.GET("/:id/preview", adminHandler.PreviewProject)
				projects.POST("/:id/snapshot", adminHandler.SnapshotProject)

				projects.POST("/:id/elements", adminHandler.AddElement)
				projects.PATCH("/:id/elements/:eid", adminHandler.UpdateElement)
				projects.DELETE("/:id/elements/:eid", adminHandler.DeleteElement)
				projects.POST("/:id/elements/:eid/preset", adminHandler.ApplyPreset)
			}

			experiences := admin.Group("/experiences")
			{
				experiences.POST("", adminHandler.CreateExperience)
				experiences.PATCH("/:id", adminHandler.UpdateExperience)
				experiences.DELETE("/:id", adminHandler.DeleteExperience)
			}

			users := admin.Group("/users")
			{
				users.GET("", adminHandler.ListUsers)
				users.POST("", adminHandler.CreateUser)
				users.PATCH("/:id", adminHandler.UpdateUser)
				users.DELETE("/:id", adminHandler.DeleteUser)
			}

			admin.GET("/export", adminHandler.Export)
			admin.POST("/import", adminHandler.Import)
			admin.POST("/reset", adminHandler.Reset)

			admin.POST("/uploads", uploadHandler.Upload)
		}

		internal := v1.Group("/internal")
		internal.Use(middleware.InternalSecretMiddleware(d.InternalSecret))
		{
			internal.POST("/images/apply", internalHandler.ApplyImage)
		}
	}
}
