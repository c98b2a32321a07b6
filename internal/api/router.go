package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/exhibit-hub/booking-api/docs"
	"github.com/exhibit-hub/booking-api/internal/api/handler"
	"github.com/exhibit-hub/booking-api/internal/api/metrics"
	"github.com/exhibit-hub/booking-api/internal/api/middleware"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

// Deps is everything the router needs to build its handlers.
type Deps struct {
	Auth      ports.AuthService
	Bookings  ports.BookingService
	Users     ports.UserAdminService
	Catalog   ports.CatalogService
	Analytics ports.AnalyticsService

	Tokens      ports.TokenCodec
	UserLookup  middleware.UserLookup
	Cookie      handler.CookieConfig
	HealthCheck map[string]handler.DependencyCheck

	CORSOrigins []string
	// AuthRate is the sustained requests per second allowed per client IP on
	// /register and /login.
	AuthRate  float64
	UploadDir string
	UploadURL string

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string { return ulid.Make().String() },
	}))
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, "Idempotency-Key",
		},
	}))
	e.Use(metrics.Middleware())

	// --- Dependencies ---
	guard := middleware.NewGuard(d.Tokens, d.UserLookup, d.Cookie.Name)
	authHandler := handler.NewAuthHandler(d.Auth, d.Cookie)
	bookingHandler := handler.NewBookingHandler(d.Bookings)
	userHandler := handler.NewUserHandler(d.Users)
	postHandler := handler.NewPostHandler(d.Catalog)
	analyticsHandler := handler.NewAnalyticsHandler(d.Analytics)
	healthHandler := handler.NewHealthHandler(d.HealthCheck)

	authLimiter := echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStore(rate.Limit(d.AuthRate)),
	})

	// --- Auth routes ---
	e.POST("/register", authHandler.Register, authLimiter)
	e.POST("/login", authHandler.Login, authLimiter)
	e.POST("/logout", authHandler.Logout)
	e.GET("/me", authHandler.Me, guard.Authenticate)
	e.PUT("/me", authHandler.UpdateProfile, guard.Authenticate)

	// --- Bookings ---
	e.GET("/ticket-types", bookingHandler.TicketTypes)
	bookings := e.Group("/bookings", guard.Authenticate)
	bookings.POST("", bookingHandler.Create)
	bookings.GET("", bookingHandler.List)
	bookings.PUT("/:id", bookingHandler.Update)
	bookings.DELETE("/:id", bookingHandler.Delete)

	// --- Catalog ---
	e.GET("/posts", postHandler.List)
	e.GET("/posts/:id", postHandler.Get)

	// --- Admin ---
	admin := e.Group("/admin", guard.RequireAdmin)
	admin.GET("/bookings", bookingHandler.ListAll)
	admin.GET("/users", userHandler.List)
	admin.PUT("/users/:id/promote", userHandler.Promote)
	admin.DELETE("/users/:id", userHandler.Delete)
	admin.POST("/posts", postHandler.Create)
	admin.PUT("/posts/:id", postHandler.Update)
	admin.DELETE("/posts/:id", postHandler.Delete)
	admin.GET("/stats", analyticsHandler.Stats)
	admin.GET("/analytics", analyticsHandler.Analytics)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static(d.UploadURL, d.UploadDir)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
