package app

import (
	"vibeit_backend/docs"
	"vibeit_backend/internal/config"
	"vibeit_backend/internal/middleware"
	"vibeit_backend/internal/model"
	"vibeit_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 3. 管理员路由
	adminGroup := authGroup.Group("/admin")
	adminGroup.Use(middleware.RoleMiddleware(model.Admin))
	{
		adminGroup.GET("/users/:id/streak", c.streak.GetUserStreak)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/courses", c.progress.ListCourses)
		public.GET("/milestones/catalog", c.streak.GetCatalog)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// 学习进度
	rg.GET("/progress", c.progress.ListProgress)
	rg.POST("/progress/:courseId/lessons/:lessonId/complete", c.progress.CompleteLesson)

	// 连续学习/里程碑
	rg.GET("/streak", c.streak.GetLearningStreak)
	rg.GET("/streak/milestones", c.streak.GetMilestoneHistory)
}
