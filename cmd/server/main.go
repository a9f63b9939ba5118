package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/shareit/internal/config"
	"github.com/iliyamo/shareit/internal/database"
	"github.com/iliyamo/shareit/internal/handler"
	"github.com/iliyamo/shareit/internal/metrics"
	"github.com/iliyamo/shareit/internal/middleware"
	"github.com/iliyamo/shareit/internal/queue"
	"github.com/iliyamo/shareit/internal/repository"
	"github.com/iliyamo/shareit/internal/router"
	"github.com/iliyamo/shareit/internal/service"
)

func main() {
	cfg := config.Load()
	initLogging(cfg)
	logger := log.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	logger.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("Database connection established")

	metrics.Register()

	// Repositories
	users := repository.NewUserRepo(db)
	items := repository.NewItemRepo(db)
	bookings := repository.NewBookingRepo(db)
	requests := repository.NewItemRequestRepo(db)
	comments := repository.NewCommentRepo(db)

	// Booking events go out only when enabled; a nil publisher disables them.
	var events service.EventPublisher
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.AMQPURL, logger)
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.BookingLogPath, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("Booking event consumer stopped")
			}
		}()
		logger.Info().Str("queue", queue.BookingEventsQueue).Msg("Booking events enabled")
	}

	// Services
	clock := service.SystemClock{}
	bookingSvc := service.NewBookingService(service.BookingServiceParams{
		Bookings: bookings,
		Users:    users,
		Items:    items,
		Events:   events,
		Clock:    clock,
		Logger:   logger,
	})
	itemSvc := service.NewItemService(service.ItemServiceParams{
		Items:    items,
		Users:    users,
		Requests: requests,
		Comments: comments,
		Bookings: bookingSvc,
		Clock:    clock,
		Logger:   logger,
	})
	userSvc := service.NewUserService(users, cfg.BcryptCost, clock, logger)
	commentSvc := service.NewCommentService(comments, items, users, bookingSvc, clock, logger)
	requestSvc := service.NewItemRequestService(requests, items, users, clock, logger)

	// Redis backs the rate limiter and the search cache; without it both are skipped.
	opts := router.Options{
		Identity: middleware.IdentityConfig{JWTSecret: cfg.JWTSecret, TrustHeader: cfg.TrustUserHeader},
	}
	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable; rate limiting and search cache disabled")
	} else {
		defer rdb.Close()
		opts.RateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger)
		cacheCfg := config.LoadCacheConfig()
		opts.Cache = middleware.NewRedisCache(cacheCfg, rdb, logger)
		opts.Invalidate = middleware.NewCacheInvalidator(cacheCfg, rdb, logger)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(logger))

	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, userSvc, logger),
		Users:    handler.NewUserHandler(userSvc, logger),
		Items:    handler.NewItemHandler(itemSvc, commentSvc, logger),
		Bookings: handler.NewBookingHandler(bookingSvc, logger),
		Requests: handler.NewRequestHandler(requestSvc, logger),
		Health:   handler.Health(db),
	}, opts)

	addr := ":" + cfg.Port
	go func() {
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("Starting HTTP server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Starting graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error stopping HTTP server")
	}
	logger.Info().Msg("Graceful shutdown completed")
}

func initLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Env == "dev" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &log.Logger
}
