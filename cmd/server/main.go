package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/eventease/internal/config"
	"github.com/iliyamo/eventease/internal/database"
	"github.com/iliyamo/eventease/internal/handler"
	"github.com/iliyamo/eventease/internal/logger"
	"github.com/iliyamo/eventease/internal/middleware"
	"github.com/iliyamo/eventease/internal/queue"
	"github.com/iliyamo/eventease/internal/repository"
	"github.com/iliyamo/eventease/internal/router"
	"github.com/iliyamo/eventease/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DSN(), cfg.DBConnectAttempts, logger.WithComponent("database"))
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.Fatal("schema migration failed", zap.Error(err))
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig(), logger.WithComponent("redis"))
	if rdb != nil {
		defer rdb.Close()
	}

	// Audit pipeline: the publisher is shared by all requests, the consumer
	// runs in the background until shutdown.
	var (
		audit     service.AuditPublisher = queue.NopPublisher{}
		consumers sync.WaitGroup
	)
	if cfg.Audit.Enabled {
		pub := queue.NewPublisher(cfg.Audit.URL, cfg.Audit.Queue, logger.WithComponent("audit"))
		defer pub.Close()
		audit = pub

		c := queue.NewConsumer(cfg.Audit.URL, cfg.Audit.Queue, queue.NewFileSink(cfg.Audit.LogPath), logger.WithComponent("audit-consumer"))
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			_ = c.Run(ctx)
		}()
	}

	users := repository.NewUserRepo(db)
	authSvc := service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost, logger.WithComponent("auth"))
	eventSvc := service.NewEventService(repository.NewEventRepo(db), service.NewCodeGenerator(), logger.WithComponent("events"))
	bookingSvc := service.NewBookingService(repository.NewBookingRepo(db), audit, logger.WithComponent("bookings"))

	if cfg.Admin.Email != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Fatal("admin seeding failed", zap.Error(err))
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger.WithComponent("http")))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	handlerLog := logger.WithComponent("handler")
	router.RegisterRoutes(e, router.Deps{
		Auth:       handler.NewAuthHandler(authSvc, handlerLog),
		Events:     handler.NewEventHandler(eventSvc, handlerLog),
		Bookings:   handler.NewBookingHandler(bookingSvc, handlerLog),
		DB:         db,
		JWTSecret:  cfg.JWTSecret,
		RateLimit:  middleware.NewTokenBucket(cfg.RateLimit, rdb, logger.WithComponent("ratelimit")),
		Cache:      middleware.NewRedisCache(cfg.Cache, rdb),
		Invalidate: middleware.InvalidateCache(cfg.Cache, rdb, logger.WithComponent("cache")),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	consumers.Wait()
}
