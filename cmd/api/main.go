package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jortega/verid/internal/auth"
	"github.com/jortega/verid/internal/background"
	"github.com/jortega/verid/internal/biometric"
	"github.com/jortega/verid/internal/config"
	"github.com/jortega/verid/internal/database"
	"github.com/jortega/verid/internal/handlers"
	middlewareCustom "github.com/jortega/verid/internal/middleware"
	"github.com/jortega/verid/internal/repositories"
	"github.com/jortega/verid/internal/routes"
	"github.com/jortega/verid/internal/services"
	pkghttp "github.com/jortega/verid/pkg/http"
	pkglogger "github.com/jortega/verid/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	accountRepo := repositories.NewAccountRepository(db)
	signatureRepo := repositories.NewSignatureRepository(db)
	attemptRepo := repositories.NewAttemptRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)

	// Matcher
	matcher, err := biometric.NewMatcher(biometric.MatcherConfig{
		Dimensions:       cfg.Biometric.Dimensions,
		Metric:           cfg.Biometric.Metric,
		HighConfidence:   cfg.Biometric.HighConfidence,
		DecisionBoundary: cfg.Biometric.DecisionBoundary,
		RejectFloor:      cfg.Biometric.RejectFloor,
	})
	if err != nil {
		logger.Error("invalid matcher configuration", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := pkglogger.NewAuditLogger(logger)

	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs: cfg.Auth.TimingDelayBaseMs,
		JitterMs:    cfg.Auth.TimingDelayJitterMs,
	})
	totpManager := auth.NewTOTPManager(cfg.Auth.TOTPIssuer)

	// Lockout alerts
	var alertService services.AlertSender
	if cfg.Email.Enabled {
		sesService, err := services.NewAWSSESAlertService(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
		if err != nil {
			logger.Error("failed to initialize alert service", slog.Any("error", err))
			os.Exit(1)
		}
		alertService = sesService
	} else {
		alertService = services.NoopAlertService{}
	}

	// Services
	lockoutService := services.NewLockoutService(accountRepo, services.LockoutConfig{
		MaxFailures:       cfg.Lockout.MaxFailures,
		Cooldown:          cfg.Lockout.Cooldown,
		EscalateAmbiguous: cfg.Lockout.EscalateAmbiguous,
	}, logger)
	sessionService := services.NewSessionService(sessionRepo, cfg.Session.TTL, logger)
	auditService := services.NewAuditService(attemptRepo, auditLogger, logger)
	enrollmentService := services.NewEnrollmentService(
		signatureRepo, accountRepo, matcher, cfg.Biometric.ModelVersion, logger, auditLogger)
	authService := services.NewAuthService(
		accountRepo, signatureRepo, matcher,
		lockoutService, sessionService, auditService, alertService,
		tokenManager, timingDelay, totpManager,
		logger, auditLogger,
	)

	// Handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(authService, sessionService, ipConfig)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService)
	adminHandler := handlers.NewAdminHandler(lockoutService, auditService, accountRepo)

	// Router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, authHandler, enrollmentHandler, adminHandler, tokenManager)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background sweep: expired sessions and audit retention
	sweeper := background.NewSweeper(
		sessionService, attemptRepo, logger,
		cfg.Session.CleanupInterval, cfg.Session.AttemptRetention)

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go sweeper.Start(sweepCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	sweepCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
