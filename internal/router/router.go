package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/scheduling-api/internal/handler"
	"github.com/jwalitptl/scheduling-api/internal/middleware"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	RequestTimeout   time.Duration
	MetricsPath      string
	MetricsPrefix    string
	// Registerer receives the HTTP metrics. Nil uses the default registry.
	Registerer prometheus.Registerer
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	h        *handler.Handler
	handlers []Handler
	limiter  *middleware.RateLimiter
	config   RouterConfig
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	h *handler.Handler,
	log *logger.Logger,
	config RouterConfig,
	handlers ...Handler,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		h:        h,
		handlers: handlers,
		config:   config,
	}

	httpMetrics := middleware.NewHTTPMetrics(config.MetricsPrefix, config.Registerer)

	// Core middlewares
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.ErrorHandler(log),
		middleware.SecurityHeaders(),
		middleware.CORS(config.CORSConfig),
		httpMetrics.Middleware(),
	)
	if config.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(config.RequestTimeout))
	}

	if config.RateLimitEnabled {
		r.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
	}

	return r
}

func (r *Router) Setup() {
	// Health and metrics stay outside auth
	r.h.RegisterRoutes(r.engine, r.config.MetricsPath)

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})
	api.Use(r.auth.Authenticate())
	if r.limiter != nil {
		api.Use(r.limiter.RateLimit())
	}

	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
