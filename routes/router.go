package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hyunw00/attendbot/config"
	"github.com/hyunw00/attendbot/controllers"
	"github.com/hyunw00/attendbot/middleware"
	"github.com/hyunw00/attendbot/utils"
)

// Controllers bundles the constructed handlers main wires together.
type Controllers struct {
	Webhook   *controllers.WebhookController
	Admin     *controllers.AdminController
	Summary   *controllers.SummaryController
	Scheduler *controllers.SchedulerController
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(ctrl Controllers) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-WORKS-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.RequestID())

	// locally stored upload previews
	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	// callback endpoint, authenticated by payload signature
	r.POST("/api/webhook", ctrl.Webhook.Handle)

	api := r.Group("/api")
	api.Use(middleware.AdminAuth(), middleware.RateLimit())
	api.GET("/admin/attendance", ctrl.Admin.Attendance)
	api.GET("/weekly-summary", ctrl.Summary.Get)
	api.POST("/weekly-summary", ctrl.Summary.Get)
	api.GET("/scheduler", ctrl.Scheduler.Status)
	api.POST("/scheduler", ctrl.Scheduler.Run)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
