package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"voxform/internal/config"
	_ "voxform/internal/docs" // registers the OpenAPI document
	"voxform/internal/handler"
	"voxform/internal/middleware"
	"voxform/internal/observe"
	"voxform/internal/service"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Speech   *handler.SpeechHandler
	Stream   *handler.StreamHandler
	Form     *handler.FormHandler
	Provider *handler.ProviderHandler
	Admin    *handler.AdminHandler
	Health   *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, tokens service.SessionTokens, metrics *observe.Metrics, h Handlers) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(observe.Handler()))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(cfg.Limits.RatePerSecond, cfg.Limits.Burst))

	v1.GET("/providers/status", h.Provider.Status)

	// Session-scoped routes
	secure := cfg.Server.Environment == "production"
	sessioned := v1.Group("")
	sessioned.Use(middleware.Session(tokens, cfg.Session.CookieName, secure))

	speech := sessioned.Group("/speech")
	speech.POST("", h.Speech.ProcessText)
	speech.POST("/audio", h.Speech.ProcessAudio)
	speech.GET("/stream", h.Stream.Serve)

	form := sessioned.Group("/form")
	form.GET("", h.Form.Get)
	form.POST("/reset", h.Form.Reset)

	// Operator routes
	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuth(cfg.Admin.TokenHash))
	admin.GET("/submissions", h.Admin.ListSubmissions)
	admin.GET("/submissions/export.csv", h.Admin.ExportCSV)
	admin.GET("/submissions/export.xlsx", h.Admin.ExportXLSX)
	admin.POST("/cache/clear", h.Admin.ClearCache)

	return r
}
