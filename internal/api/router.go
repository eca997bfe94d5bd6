package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/sirpyerre/user-management-api/docs"
	"github.com/sirpyerre/user-management-api/internal/api/handler"
	"github.com/sirpyerre/user-management-api/internal/api/middleware"
	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/ports"
	"github.com/sirpyerre/user-management-api/internal/pkg/config"
)

const serviceVersion = "1.0.0"

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Events  ports.EventPublisher
	Users   ports.UserService
	Books   ports.BookService
	Auth    ports.AuthService
	Checks  map[string]handler.Check
	Started time.Time
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	cfg := d.Config
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger, d.Events)

	// --- Global middleware ---
	// RequestContext is outermost so it sees the final status of every
	// request, including recovered panics and rejected ones.
	e.Use(middleware.RequestContext(d.Events, d.Logger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.HTTP.CORSOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderXRequestID, middleware.HeaderUserID},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit(cfg.HTTP.BodyLimit))
	e.Use(rateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow))
	e.Use(echomiddleware.ContextTimeout(cfg.HTTP.RequestTimeout))
	e.Use(middleware.Authenticate(d.Auth))

	if cfg.Features.Metrics {
		reg := prometheus.NewRegistry()
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "usermgmt",
			Subsystem:  "http",
			Registerer: reg,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
		}))
	}
	if cfg.Features.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Health probes (no auth required) ---
	health := handler.NewHealthHandler(cfg.Env, serviceVersion, d.Started, d.Checks)
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?

	api := e.Group("/api/" + cfg.APIVersion)
	api.GET("/health", health.Liveness)

	// --- Auth routes ---
	auth := handler.NewAuthHandler(d.Auth)
	api.POST("/auth/login", auth.Login)
	api.POST("/auth/refresh", auth.Refresh)
	api.POST("/auth/logout", auth.Logout)
	api.GET("/auth/validate", auth.Validate)

	// --- User routes ---
	var guard []echo.MiddlewareFunc
	if cfg.Auth.RequireForMutations {
		guard = append(guard, middleware.RequireAuth(), middleware.RBAC(domain.RoleAdmin, domain.RoleModerator))
	}

	users := handler.NewUserHandler(d.Users)
	books := handler.NewBookHandler(d.Books)
	u := api.Group("/users")
	u.GET("", users.List)
	u.GET("/stats", users.Stats)
	u.GET("/bookList", books.List)
	u.GET("/:id", users.Get)
	u.POST("", users.Create, guard...)
	u.POST("/generate", users.Generate, guard...)
	u.POST("/updateProfile", users.UpdateProfile)
	u.PUT("/:id", users.Update, guard...)
	u.DELETE("/:id", users.Delete, guard...)

	return e
}

// rateLimiter allows requests per window per client IP.
func rateLimiter(requests int, window time.Duration) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(requests) / window.Seconds()),
		Burst:     requests,
		ExpiresIn: window,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
		},
	})
}
