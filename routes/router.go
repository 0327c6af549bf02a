package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"

	"github.com/kasilami/kasilami/config"
	"github.com/kasilami/kasilami/controllers"
	"github.com/kasilami/kasilami/forum"
	"github.com/kasilami/kasilami/middleware"
	"github.com/kasilami/kasilami/realtime"
	"github.com/kasilami/kasilami/utils"
)

// staticDir holds the built single-page app.
const staticDir = "./static"

// pageRoutes are the client-side routes that all load the SPA shell.
var pageRoutes = []string{
	"/",
	"/kasi/:kasiName",
	"/kasi/:kasiName/:section",
	"/events",
	"/businesses",
	"/news",
	"/chat",
	"/add-kasi",
	"/test-connection",
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, svc *forum.Service, bridge *realtime.Bridge) *gin.Engine {
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
		r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
		r.Use(ginzap.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		utils.Sugar.Warnf("gin access log disabled: %v", err)
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.APIKeyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		// browsers refuse credentials with a wildcard origin
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", staticDir)
	for _, path := range pageRoutes {
		r.GET(path, serveShell)
	}

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	kasiController := controllers.NewKasiController(svc)
	postController := controllers.NewPostController(svc)
	realtimeController := controllers.NewRealtimeController(bridge, cfg.AllowedOrigins)
	diagnosticsController := controllers.NewDiagnosticsController(svc)

	api := r.Group("/api/v1")
	api.Use(middleware.APIKeyRequired(cfg.BackendAPIKey))

	api.GET("/kasis", kasiController.ListKasis)
	api.POST("/kasis", kasiController.CreateKasi)
	api.GET("/kasis/:name", kasiController.GetKasi)
	api.GET("/kasis/:name/posts", postController.ListKasiPosts)

	api.GET("/posts", postController.ListPosts)
	api.POST("/posts", postController.CreatePost)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/posts/:id/comments", postController.ListComments)
	api.POST("/posts/:id/comments", postController.CreateComment)

	api.GET("/realtime", realtimeController.Watch)
	api.GET("/diagnostics", diagnosticsController.Run)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		// any other path is a client-side route
		serveShell(ctx)
	})

	return r
}

func serveShell(ctx *gin.Context) {
	ctx.Status(http.StatusOK)
	ctx.File(staticDir + "/index.html")
}
