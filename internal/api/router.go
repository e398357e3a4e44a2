package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/config"
	"resumeBuilder/internal/metrics"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/validation"
)

// NewRouter 构建 Gin 路由引擎并安装公共中间件、页面模板、健康检查与指标端点。
func NewRouter(cfg *config.Config, renderer *render.Renderer, resolver middleware.SessionResolver, logger *slog.Logger) *gin.Engine {
	validation.Init()

	router := gin.New()
	// 只信任配置中的代理，否则 ClientIP 会采信客户端伪造的 X-Forwarded-For。
	if err := router.SetTrustedProxies(cfg.API.TrustedProxyList()); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("invalid trusted proxies, trusting none", slog.Any("error", err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(
		gin.Recovery(),
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
		metrics.GinMiddleware(),
	)

	if origins := cfg.API.AllowedOrigins(); len(origins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost},
			AllowHeaders:     []string{"Origin", "Content-Type", middleware.CorrelationIDHeader},
			ExposeHeaders:    []string{middleware.CorrelationIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.Use(middleware.SessionMiddleware(resolver, cfg.Session.CookieName))
	router.SetHTMLTemplate(renderer.Templates())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	return router
}
