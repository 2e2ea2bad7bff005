package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/hbnb/marketplace/docs"
	"github.com/hbnb/marketplace/internal/api/handler"
	"github.com/hbnb/marketplace/internal/api/middleware"
	"github.com/hbnb/marketplace/internal/core/policy"
	"github.com/hbnb/marketplace/internal/core/ports"
)

// Deps are the services and adapters the router exposes.
type Deps struct {
	Identity  ports.IdentityService
	Auth      ports.AuthService
	Amenities ports.AmenityService
	Places    ports.PlaceService
	Reviews   ports.ReviewService
	Verifier  ports.TokenVerifier

	// Health lists the dependencies checked by GET /health/ready.
	Health map[string]handler.Pinger

	// Registry receives the HTTP metrics and backs GET /metrics. Nil uses the
	// default prometheus registry.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(prometheusConfig(d.Registry)))

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(d.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", metricsHandler(d.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/api/v1")
	auth := middleware.Auth(d.Verifier)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(d.Identity, d.Auth)
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	// --- Users ---
	users := handler.NewUserHandler(d.Identity, d.Reviews)
	v1.GET("/users", users.List, auth, middleware.Authorize(policy.UserList))
	v1.GET("/users/:id", users.Get)
	v1.PUT("/users/:id", users.Update, auth, middleware.AuthorizeSelf(policy.UserUpdate, "id"))
	v1.DELETE("/users/:id", users.Delete, auth, middleware.Authorize(policy.UserDelete))
	v1.GET("/users/:id/reviews", users.Reviews)

	// --- Amenities ---
	amenities := handler.NewAmenityHandler(d.Amenities)
	v1.GET("/amenities", amenities.List)
	v1.GET("/amenities/:id", amenities.Get)
	v1.POST("/amenities", amenities.Create, auth, middleware.Authorize(policy.AmenityCreate))
	v1.PUT("/amenities/:id", amenities.Update, auth, middleware.Authorize(policy.AmenityUpdate))
	v1.DELETE("/amenities/:id", amenities.Delete, auth, middleware.Authorize(policy.AmenityDelete))

	// --- Places ---
	places := handler.NewPlaceHandler(d.Places, d.Reviews)
	v1.GET("/places", places.List)
	v1.GET("/places/:id", places.Get)
	v1.GET("/places/:id/reviews", places.Reviews)
	v1.POST("/places", places.Create, auth)
	v1.PUT("/places/:id", places.Update, auth)
	v1.DELETE("/places/:id", places.Delete, auth)

	// --- Reviews ---
	reviews := handler.NewReviewHandler(d.Reviews)
	v1.GET("/reviews", reviews.List)
	v1.GET("/reviews/:id", reviews.Get)
	v1.POST("/reviews", reviews.Create, auth)
	v1.PUT("/reviews/:id", reviews.Update, auth)
	v1.DELETE("/reviews/:id", reviews.Delete, auth)

	return e
}

func prometheusConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{
		Subsystem: "http",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			entry := log.Info()
			if v.Error != nil {
				entry = log.Warn().Err(v.Error)
			}
			entry.
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
