package app

import (
	"qbank_backend/docs"
	"qbank_backend/internal/config"
	"qbank_backend/internal/middleware"
	"qbank_backend/internal/model"
	"qbank_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 答题流程，按测验 ID 访问
	a.registerQuizRoutes(router, c)

	// 3. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerUserRoutes(authGroup, c)
	}

	// 4. 管理员相关接口
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerQuizRoutes(router *gin.Engine, c *controllers) {
	quiz := router.Group("/api/quiz")
	quiz.Use(middleware.TryAuthMiddleware(a.Config))
	{
		quiz.GET("/:id", c.quiz.Get)
		quiz.POST("/submit/:quizId", c.quiz.Submit)
		quiz.POST("/:id/answer", c.quiz.Answer)
		quiz.POST("/:id/answer/:questionId", c.quiz.Answer)
		quiz.POST("/:id/finish", c.quiz.Finish)
	}
}

func (a *App) registerUserRoutes(r *gin.RouterGroup, c *controllers) {
	// 组卷与个人测验
	r.POST("/quiz", c.quiz.CreateBySubjects)
	r.POST("/quiz/create", c.quiz.CreateBySystems)
	r.GET("/quiz/mine", c.quiz.ListMine)
	r.DELETE("/quiz/:id", c.quiz.Delete)

	// 个人资料
	r.GET("/users/:id", c.user.Get)
	r.PUT("/users/:id", c.user.Update)

	// 题库目录
	r.GET("/subjects", c.subject.List)
	r.GET("/subjects/:id", c.subject.Get)

	r.POST("/systems", c.system.Create)
	r.GET("/systems", c.system.List)
	r.GET("/systems/:id", c.system.Get)
	r.GET("/systems/by-subject/:subjectId", c.system.ListBySubject)

	subsystems := r.Group("/subsystems")
	{
		subsystems.POST("", c.system.CreateSubSystem)
		subsystems.GET("", c.system.ListSubSystems)
		subsystems.GET("/:id", c.system.GetSubSystem)
		subsystems.GET("/by-system/:systemId", c.system.ListSubSystemsBySystem)
		subsystems.PUT("/:id", c.system.UpdateSubSystem)
		subsystems.DELETE("/:id", c.system.DeleteSubSystem)
	}

	r.GET("/questions", c.question.List)
	r.GET("/questions/:id", c.question.Get)

	// 题量统计
	count := r.Group("/count")
	{
		count.GET("/fromSubject", c.count.FromSubject)
		count.GET("/fromSystem", c.count.FromSystem)
		count.POST("/by-subjects-system", c.count.BySubjectsSystem)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/quiz", c.quiz.List)
		admin.DELETE("/quiz", c.quiz.DeleteAll)

		admin.POST("/users", c.user.Create)
		admin.GET("/users", c.user.List)
		admin.DELETE("/users/:id", c.user.Delete)

		admin.POST("/subjects", c.subject.Create)
		admin.PUT("/subjects/:id", c.subject.Update)
		admin.DELETE("/subjects/:id", c.subject.Delete)

		admin.PUT("/systems/:id", c.system.Update)
		admin.DELETE("/systems/:id", c.system.Delete)

		admin.POST("/questions", c.question.Create)
		admin.PUT("/questions/:id", c.question.Update)
		admin.DELETE("/questions/:id", c.question.Delete)
	}
}
