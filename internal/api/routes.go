package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/store"
)

// Dependencies 汇总路由所需的服务。
type Dependencies struct {
	Users       store.UserStore
	Resumes     store.ResumeStore
	Sessions    SessionIssuer
	RateCounter redisRateCounter
	Enqueuer    TaskEnqueuer
	Presigner   DownloadPresigner
	Logger      *slog.Logger

	CookieName            string
	LoginRateLimitPerHour int
}

// RegisterRoutes 注册全部页面路由。
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Users, deps.Sessions, deps.RateCounter, deps.CookieName, deps.LoginRateLimitPerHour, deps.Logger)
	resumeHandler := NewResumeHandler(deps.Resumes, deps.Logger)
	templateHandler := NewTemplateHandler(deps.Resumes, deps.Logger)
	exportHandler := NewExportHandler(deps.Resumes, deps.Enqueuer, deps.Presigner, deps.Logger)

	router.GET("/", authHandler.Index)
	router.GET("/signup.html", authHandler.ShowSignup)
	router.POST("/signup.html", authHandler.Signup)
	router.GET("/login.html", authHandler.ShowLogin)
	router.POST("/login.html", authHandler.Login)
	router.GET("/logout.html", authHandler.Logout)

	// 版式选择页未登录时回到 dashboard。
	templatePage := router.Group("/template.html")
	templatePage.Use(middleware.RequireSession("/dashboard.html"))
	{
		templatePage.GET("", templateHandler.ShowTemplates)
		templatePage.POST("", templateHandler.ChooseTemplate)
	}

	protected := router.Group("/")
	protected.Use(middleware.RequireSession("/login.html"))
	{
		protected.GET("/dashboard.html", authHandler.Dashboard)

		for _, step := range wizardSteps {
			protected.GET(step.Path(), resumeHandler.Show(step))
			protected.POST(step.Path(), resumeHandler.Save(step))
			protected.POST(step.SavePath(), resumeHandler.Save(step))
		}

		protected.GET("/select_template/:name", templateHandler.SelectTemplate)
		for _, t := range resume.Templates {
			protected.GET(t.Path(), templateHandler.Layout(t))
		}
		protected.GET("/preview.html", templateHandler.Preview)

		protected.POST("/export", exportHandler.Export)
		protected.GET("/download.pdf", exportHandler.Download)
	}
}
