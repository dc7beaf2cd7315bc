package app

import (
	"civilprep_backend/docs"
	"civilprep_backend/internal/config"
	"civilprep_backend/internal/middleware"
	"civilprep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.GET("/dashboard", c.dashboard.GetDashboard)

		a.registerTrackerRoutes(authGroup, c)
		a.registerPracticeRoutes(authGroup, c)
		a.registerAnalyticsRoutes(authGroup, c)
		a.registerAIRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
	}
}

// registerTrackerRoutes 科目、目标、测试、心情与各类进度的增删改查
func (a *App) registerTrackerRoutes(group *gin.RouterGroup, c *controllers) {
	subjects := group.Group("/subjects")
	{
		subjects.GET("", c.subject.List)
		subjects.POST("", c.subject.Create)
		subjects.PUT("", c.subject.UpdateField)
		subjects.DELETE("/:id", c.subject.Delete)
	}

	goals := group.Group("/goals")
	{
		goals.GET("", c.goal.List)
		goals.POST("", c.goal.Create)
		goals.GET("/summary", c.goal.Summary)
		goals.PUT("/:id", c.goal.Update)
		goals.DELETE("/:id", c.goal.Delete)
	}

	tests := group.Group("/tests")
	{
		tests.GET("", c.test.List)
		tests.POST("", c.test.Create)
		tests.GET("/stats", c.test.Stats)
		tests.PUT("/:id", c.test.Update)
		tests.DELETE("/:id", c.test.Delete)
	}

	moods := group.Group("/moods")
	{
		moods.GET("", c.mood.List)
		moods.POST("", c.mood.Upsert)
		moods.DELETE("/:date", c.mood.Delete)
	}

	optional := group.Group("/optional/sections")
	{
		optional.GET("", c.optional.List)
		optional.POST("", c.optional.Upsert)
		optional.PUT("/:id", c.optional.Update)
		optional.DELETE("/:id", c.optional.Delete)
	}

	group.GET("/current-affairs", c.progress.GetCurrentAffairs)
	group.PUT("/current-affairs", c.progress.UpdateCurrentAffairs)
	group.GET("/essays/progress", c.progress.GetEssay)
	group.PUT("/essays/progress", c.progress.UpdateEssay)
}

func (a *App) registerPracticeRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/practice/attempts", c.practice.RecentAttempts)
	group.POST("/practice/attempts", c.practice.RecordAttempts)

	sessions := group.Group("/sessions")
	{
		sessions.GET("", c.practice.ListSessions)
		sessions.POST("/start", c.practice.StartSession)
		sessions.POST("/:id/end", c.practice.EndSession)
	}
}

func (a *App) registerAnalyticsRoutes(group *gin.RouterGroup, c *controllers) {
	analytics := group.Group("/analytics")
	{
		analytics.GET("/readiness", c.analytics.GetReadiness)
		analytics.GET("/prediction", c.analytics.GetPrediction)
		analytics.GET("/history", c.analytics.GetHistory)
	}

	reports := group.Group("/reports")
	{
		reports.GET("/progress.xlsx", c.report.Download)
		reports.POST("/progress", c.report.Export)
	}
}

func (a *App) registerAIRoutes(group *gin.RouterGroup, c *controllers) {
	ai := group.Group("/ai")
	{
		ai.GET("/suggestions", c.ai.Suggestions)
		ai.POST("/questions", c.ai.Questions)
		ai.POST("/essay/evaluate", c.ai.EvaluateEssay)
		ai.GET("/essay/evaluations", c.ai.ListEvaluations)
		ai.POST("/chat", c.ai.Chat)
		ai.POST("/chat/stream", c.ai.ChatStream)
		ai.GET("/chat/history", c.ai.ChatHistory)
		ai.POST("/notes", c.ai.Notes)
	}
}
