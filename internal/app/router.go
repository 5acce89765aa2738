package app

import (
	"audit_market_backend/docs"
	"audit_market_backend/internal/config"
	"audit_market_backend/internal/middleware"
	"audit_market_backend/internal/model"

	"audit_market_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 市场目录：可选认证，游客可浏览，登录审计师会记录浏览事件
	a.registerMarketplaceRoutes(router, c, repos)

	// 3. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerAuditorRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/gamification/leaderboard", c.gamification.GetLeaderboard)
	}
}

func (a *App) registerMarketplaceRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	marketplace := router.Group("/api/marketplace")
	marketplace.Use(middleware.TryAuthMiddleware(a.Config), middleware.ActivityMiddleware(repos.user))
	{
		marketplace.GET("/services", c.marketplace.ListServices)
		marketplace.GET("/services/:id", c.marketplace.GetService)
		marketplace.POST("/compare", c.marketplace.CompareServices)
	}
}

func (a *App) registerAuditorRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.GET("/user/me", c.user.GetMe)
	rg.PUT("/user/me", c.user.UpdateMe)
	rg.PUT("/user/auditor-profile", c.user.UpdateAuditorProfile)
	rg.POST("/user/avatar", c.user.UploadAvatar)

	// 引导建档
	rg.POST("/onboarding/complete", c.onboarding.Complete)

	// 个性化视图
	personalization := rg.Group("/personalization")
	{
		personalization.GET("/content", c.personalization.GetContent)
		personalization.POST("/refresh", c.personalization.Refresh)
		personalization.POST("/quick-wins/complete", c.personalization.CompleteQuickWin)
		personalization.PUT("/preferences", c.personalization.UpdatePreferences)
		personalization.PUT("/insights", c.personalization.UpdateInsights)
		personalization.GET("/session", c.personalization.GetSession)
		personalization.POST("/interactions", c.personalization.TrackInteraction)
		personalization.POST("/events", c.personalization.TrackEvent)
	}

	// 游戏化
	gamification := rg.Group("/gamification")
	gamification.Use(middleware.RoleMiddleware(model.Auditor, model.Admin))
	{
		gamification.GET("/summary", c.gamification.GetSummary)
		gamification.POST("/checkin", c.gamification.Checkin)
		gamification.GET("/badges", c.gamification.GetBadges)
		gamification.GET("/activity", c.gamification.GetActivityFeed)
	}

	// 仪表盘
	rg.GET("/dashboard", c.dashboard.GetDashboard)
}
