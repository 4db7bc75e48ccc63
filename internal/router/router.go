package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/patient-records/internal/handler"
	"github.com/jwalitptl/patient-records/internal/middleware"
)

// Handler registers a resource's routes on the API group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit      rate.Limit
	RateBurst      int
	CacheTTL       time.Duration
	MetricsEnabled bool
	CORS           middleware.CORSConfig
}

type Router struct {
	engine   *gin.Engine
	config   Config
	health   *handler.Handler
	handlers []Handler
}

func NewRouter(config Config, health *handler.Handler, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(config.CORS),
	)

	if config.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	return &Router{
		engine:   engine,
		config:   config,
		health:   health,
		handlers: handlers,
	}
}

func (r *Router) Setup() {
	r.engine.GET("/health", r.health.HealthCheck)
	if r.config.MetricsEnabled {
		r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.engine.Group("/api/v1")
	if r.config.CacheTTL > 0 {
		api.Use(middleware.NewResponseCache(r.config.CacheTTL).Cache())
	}
	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
