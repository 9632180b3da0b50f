package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	prommw "github.com/jwalitptl/clinic-admin/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-admin/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// ClinicHandler also mounts routes that need a selected clinic.
type ClinicHandler interface {
	Handler
	RegisterClinicRoutes(*gin.RouterGroup)
}

type Handlers struct {
	Health      Handler
	Clinic      ClinicHandler
	Doctor      Handler
	Patient     Handler
	Appointment Handler
}

type RouterConfig struct {
	Mode           string
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	MaxBodySize    int64
	CORSConfig     middleware.CORSConfig
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	handlers Handlers,
	metrics *prommw.Handler,
	logger zerolog.Logger,
	config RouterConfig,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = middleware.DefaultMaxBodySize
	}

	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
	)
	if metrics != nil {
		engine.Use(metrics.Middleware())
	}
	engine.Use(
		middleware.CORS(config.CORSConfig),
		middleware.Timeout(config.RequestTimeout),
		middleware.SizeLimit(config.MaxBodySize),
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
		auth:     auth,
		handlers: handlers,
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Header("Cache-Control", "no-store")
		c.Next()
	})

	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(api)
	}

	// Routes for any signed-in user, clinic or not.
	user := api.Group("")
	user.Use(r.auth.Authenticate(), r.auth.RequireSession())
	r.handlers.Clinic.RegisterRoutes(user)

	// Routes scoped to the session's clinic.
	clinic := api.Group("")
	clinic.Use(r.auth.Authenticate(), r.auth.RequireClinic())
	r.handlers.Clinic.RegisterClinicRoutes(clinic)
	r.handlers.Doctor.RegisterRoutes(clinic)
	r.handlers.Patient.RegisterRoutes(clinic)
	r.handlers.Appointment.RegisterRoutes(clinic)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
