package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventmanagement/config"
	_ "eventmanagement/docs"
	"eventmanagement/internal/adapters/auth"
	"eventmanagement/internal/adapters/cache"
	"eventmanagement/internal/adapters/email"
	deliveryhttp "eventmanagement/internal/delivery/http"
	"eventmanagement/internal/delivery/http/controllers"
	"eventmanagement/internal/delivery/http/middleware"
	"eventmanagement/internal/repository/postgres"
	"eventmanagement/internal/services"
)

const (
	serviceTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
	bcryptCost      = 10
)

// @title Event Management API
// @version 1.0
// @description Events and attendance responses for registered users.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	// The cache is an optimization: when Redis is unreachable we run
	// without it rather than refusing to start.
	store, err := cache.NewRedisStore(cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, running without cache", "err", err)
		store = nil
	}
	cacheCoordinator := services.NewCacheCoordinator(store, logger)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:        cfg.EmailProvider,
		FromAddress:     cfg.EmailFromAddress,
		FromName:        cfg.EmailFromName,
		Region:          cfg.SESRegion,
		AccessKeyID:     cfg.SESAccessKeyID,
		SecretAccessKey: cfg.SESSecretAccessKey,
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	attendanceRepo := postgres.NewAttendanceRepository(db)

	tokens := auth.NewJWTCodec(cfg.JWTSecret, cfg.JWTClockSkew)
	hasher := auth.NewBcryptHasher(bcryptCost)
	guard := services.NewAuthorizationGuard()

	authService := services.NewAuthService(userRepo, hasher, tokens, cfg.JWTExpiry, cacheCoordinator, mailer, logger)
	eventService := services.NewEventService(eventRepo, attendanceRepo, userRepo, guard, cacheCoordinator, serviceTimeout)
	attendanceService := services.NewAttendanceService(attendanceRepo, eventRepo, userRepo, cacheCoordinator, serviceTimeout)

	mux := deliveryhttp.NewRouter(
		logger,
		tokens,
		controllers.NewAuthController(logger, authService),
		controllers.NewEventController(logger, eventService),
		controllers.NewAttendanceController(logger, attendanceService),
	)

	handler := middleware.LoggingMiddleware(logger, mux)
	if len(cfg.CORSAllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}
