// Command server runs the exhibit booking API.
//
//	@title						Exhibit Hub Booking API
//	@version					1.0
//	@description				Ticket bookings, exhibit catalog and admin analytics.
//	@BasePath					/
//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						token
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/exhibit-hub/booking-api/internal/api"
	"github.com/exhibit-hub/booking-api/internal/api/handler"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
	"github.com/exhibit-hub/booking-api/internal/core/service"
	"github.com/exhibit-hub/booking-api/internal/infrastructure/config"
	mongodb "github.com/exhibit-hub/booking-api/internal/infrastructure/db/mongo"
	redisdb "github.com/exhibit-hub/booking-api/internal/infrastructure/db/redis"
	"github.com/exhibit-hub/booking-api/internal/infrastructure/queue"
	"github.com/exhibit-hub/booking-api/internal/infrastructure/storage"
	"github.com/exhibit-hub/booking-api/internal/infrastructure/token"
	"github.com/exhibit-hub/booking-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env file
	envErr := godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet.
		fallback := logger.Init(logger.Options{})
		fallback.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "booking-api",
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found, relying on environment variables")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server exiting")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Database connections ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	bookingRepo := mongodb.NewBookingRepository(db)
	postRepo := mongodb.NewPostRepository(db)
	analyticsRepo := mongodb.NewAnalyticsRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users":   userRepo.EnsureIndexes,
		"tickets": bookingRepo.EnsureIndexes,
		"posts":   postRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}

	images, err := storage.NewLocalImageStore(cfg.Uploads.Dir, cfg.Uploads.BaseURL)
	if err != nil {
		return err
	}

	// --- Ticket mirror ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var mirror ports.TicketMirror = service.NewTicketMirror(userRepo, logger.Component("ticket_mirror"))
	var dispatcher *queue.MirrorDispatcher
	if cfg.Mirror.Async {
		dispatcher = queue.NewMirrorDispatcher(cfg.Mirror.Workers, mirror, logger.Component("mirror_dispatcher"))
		dispatcher.Start(workerCtx)
		mirror = dispatcher
	}

	// --- Services ---
	tokens := token.NewCodec(&token.Config{Secret: cfg.Auth.JWTSecret, TTL: cfg.Auth.JWTTTL})
	authService := service.NewAuthService(userRepo, tokens, logger.Component("auth"))
	bookingService := service.NewBookingService(bookingRepo, mirror, redisdb.NewIdempotencyStore(rdb), userRepo, logger.Component("bookings"))
	userService := service.NewUserAdminService(userRepo, logger.Component("users"))
	catalogService := service.NewCatalogService(postRepo, images, logger.Component("catalog"))
	analyticsService := service.NewAnalyticsService(
		userRepo, bookingRepo, postRepo, analyticsRepo,
		redisdb.NewCache(rdb, "booking:"), cfg.Analytics.StatsCacheTTL,
		logger.Component("analytics"),
	)

	router := api.NewRouter(api.Deps{
		Auth:       authService,
		Bookings:   bookingService,
		Users:      userService,
		Catalog:    catalogService,
		Analytics:  analyticsService,
		Tokens:     tokens,
		UserLookup: userRepo,
		Cookie: handler.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
			TTL:    cfg.Auth.JWTTTL,
		},
		HealthCheck: map[string]handler.DependencyCheck{
			"mongodb": mongodb.Ping(db),
			"redis":   redisdb.Ping(rdb),
		},
		CORSOrigins: cfg.HTTP.CORSOrigins,
		AuthRate:    cfg.HTTP.AuthRate,
		UploadDir:   cfg.Uploads.Dir,
		UploadURL:   cfg.Uploads.BaseURL,
		Log:         logger.Component("http"),
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Bool("async_mirror", cfg.Mirror.Async).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if dispatcher != nil {
		stopWorkers()
		dispatcher.Wait()
	}
	return nil
}
