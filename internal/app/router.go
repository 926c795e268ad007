package app

import (
	"english_edu_backend/docs"
	"english_edu_backend/internal/middleware"
	"english_edu_backend/internal/model"
	"english_edu_backend/pkg/monitoring"
	"english_edu_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.Config))
	{
		a.registerLearnerRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.Config), middleware.RoleMiddleware(model.Admin))
	{
		admin.PATCH("/exams/:id/approval", c.exam.SetApproval)
		admin.GET("/users", c.user.GetUsers)
		admin.PATCH("/users/:id/status", c.user.SetStatus)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		public.GET("/courses", c.course.ListPublished)
		public.GET("/courses/:id", c.course.GetPublished)

		public.GET("/exams/published", c.exam.ListPublished)
		// 登录的教师可以看到完整题目
		public.GET("/exams/:id", middleware.TryAuthMiddleware(a.Config), c.exam.GetExam)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	rg.POST("/exams/:id/submit", c.submission.SubmitExam)
	rg.GET("/submissions/my", c.submission.ListMine)
	rg.GET("/submissions/:id", c.submission.GetSubmission)

	rg.POST("/orders", c.order.Checkout)
	rg.POST("/orders/:id/pay", c.order.Pay)
	rg.POST("/orders/:id/cancel", c.order.Cancel)
	rg.GET("/orders/my", c.order.ListMine)
	rg.GET("/enrollments/my", c.order.ListEnrollments)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	staff := middleware.RoleMiddleware(model.Teacher, model.Admin)
	uploadLimit := security.BodyLimit(a.Config.Storage.MaxUploadMB << 20)

	exams := rg.Group("/exams", staff)
	{
		exams.POST("", c.exam.CreateExam)
		exams.PUT("/:id", c.exam.UpdateExam)
		exams.DELETE("/:id", c.exam.DeleteExam)
		exams.GET("/:id/submissions", c.submission.ListForExam)
	}

	questions := rg.Group("/questions", staff)
	{
		questions.GET("", c.question.ListQuestions)
		questions.GET("/:id", c.question.GetQuestion)
		questions.POST("", c.question.CreateQuestion)
		questions.PUT("/:id", c.question.UpdateQuestion)
		questions.DELETE("/:id", c.question.DeleteQuestion)
	}

	rubrics := rg.Group("/rubrics", staff)
	{
		rubrics.GET("", c.question.ListRubrics)
		rubrics.GET("/:id", c.question.GetRubric)
		rubrics.POST("", c.question.CreateRubric)
		rubrics.PUT("/:id", c.question.UpdateRubric)
		rubrics.DELETE("/:id", c.question.DeleteRubric)
	}

	teacher := rg.Group("/teacher", staff)
	{
		teacher.GET("/exams", c.exam.ListManaged)

		teacher.GET("/courses", c.course.ListManaged)
		teacher.GET("/courses/:id", c.course.GetManaged)
		teacher.POST("/courses", c.course.CreateCourse)
		teacher.PUT("/courses/:id", c.course.UpdateCourse)
		teacher.DELETE("/courses/:id", c.course.DeleteCourse)

		teacher.POST("/sections", c.course.CreateSection)
		teacher.PUT("/sections/:id", c.course.UpdateSection)
		teacher.DELETE("/sections/:id", c.course.DeleteSection)

		teacher.POST("/lessons", c.course.CreateLesson)
		teacher.PUT("/lessons/:id", c.course.UpdateLesson)
		teacher.DELETE("/lessons/:id", c.course.DeleteLesson)
		teacher.POST("/lessons/:id/asset", uploadLimit, c.course.UploadLessonAsset)

		teacher.POST("/uploads", uploadLimit, c.upload.Upload)
		teacher.DELETE("/uploads", c.upload.Delete)
	}
}
