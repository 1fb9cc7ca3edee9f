// Package http exposes the archive over a gin HTTP API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CaseLaw-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/CaseLaw-Intelligence/internal/interfaces/http/middleware"
)

// RouterConfig carries the handlers and middleware inputs for the route
// tree.  Nil handlers leave their routes unregistered so a partially wired
// server still starts.
type RouterConfig struct {
	CaseHandler    *handlers.CaseHandler
	StatuteHandler *handlers.StatuteHandler
	HealthHandler  *handlers.HealthHandler

	MetricsHandler http.Handler
	Metrics        *prometheus.Metrics
	CORSOrigins    []string
	Logger         logging.Logger
	Mode           string
}

// NewRouter builds the gin engine with the full middleware chain and route
// tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	switch cfg.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log, cfg.Metrics),
		middleware.CORS(cfg.CORSOrigins),
	)

	if cfg.HealthHandler != nil {
		engine.GET("/healthz", cfg.HealthHandler.Liveness)
		engine.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := engine.Group("/api/v1")
	if cfg.CaseHandler != nil {
		api.GET("/cases", cfg.CaseHandler.List)
		api.GET("/cases/search", cfg.CaseHandler.Search)
		api.GET("/cases/:id", cfg.CaseHandler.Get)
	}
	if cfg.StatuteHandler != nil {
		api.GET("/statutes/:ref/related", cfg.StatuteHandler.Related)
		api.GET("/statutes/:ref/cases", cfg.StatuteHandler.Citing)
	}

	return engine
}
