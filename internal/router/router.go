// Package router assembles the gin engine: middleware, API routes, docs and metrics.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"secretsanta/internal/auth"
	"secretsanta/internal/docs"
	"secretsanta/internal/handlers"
	"secretsanta/internal/metrics"
	"secretsanta/internal/middleware"
)

type Config struct {
	Handler       *handlers.HTTPHandler
	Verifier      auth.Verifier
	Metrics       *metrics.Metrics
	AllowedOrigin string
}

func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	var observer middleware.RequestObserver
	if cfg.Metrics != nil {
		observer = cfg.Metrics
	}
	r.Use(
		gin.Recovery(),
		middleware.WithRequestID(),
		middleware.WithLogging(observer),
		middleware.CORS(cfg.AllowedOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	docs.Register(r)

	// Public routes (participants list/add, status, own assignment)
	cfg.Handler.RegisterPublicRoutes(r)

	// Everything that mutates state or reveals the full draw needs a token
	admin := r.Group("/")
	admin.Use(middleware.BearerAuth(cfg.Verifier))
	cfg.Handler.RegisterAdminRoutes(admin)

	return r
}
