package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_paygate/internal/cache"
	"github.com/GTDGit/gtd_paygate/internal/config"
	"github.com/GTDGit/gtd_paygate/internal/database"
	"github.com/GTDGit/gtd_paygate/internal/handler"
	"github.com/GTDGit/gtd_paygate/internal/middleware"
	"github.com/GTDGit/gtd_paygate/internal/repository"
	"github.com/GTDGit/gtd_paygate/internal/service"
	"github.com/GTDGit/gtd_paygate/internal/sse"
	"github.com/GTDGit/gtd_paygate/internal/utils"
	"github.com/GTDGit/gtd_paygate/internal/worker"
)

// main is the application entrypoint for the payment authorization gateway.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("storage", cfg.StorageBackend).Msg("starting payment gateway")

	// 3. Context for workers and graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		if jwtSecret, err = utils.GenerateSecret(32); err != nil {
			log.Fatal().Err(err).Msg("failed to generate signing key")
		}
		log.Warn().Msg("JWT_SECRET_KEY not set, using an ephemeral signing key; tokens will not survive a restart")
	}

	// 4. Storage
	var (
		clientRepo  repository.ClientRepository
		paymentRepo repository.PaymentRepository
	)
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := database.Connect(ctx, &cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		defer db.Close()

		if err := database.Migrate(db, "migrations"); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		log.Info().Msg("migrations completed successfully")

		clientRepo = repository.NewPostgresClientRepository(db)
		paymentRepo = repository.NewPostgresPaymentRepository(db)
	default:
		clientRepo = repository.NewMemoryClientRepository()
		paymentRepo = repository.NewMemoryPaymentRepository()
	}

	// 5. Idempotency store: Redis when configured, otherwise process memory
	var idempotency cache.IdempotencyStore
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")
		idempotency = cache.NewRedisIdempotencyStore(redisClient, cfg.Idempotency.TTL)
	} else {
		memStore := cache.NewMemoryIdempotencyStore(cfg.Idempotency.TTL)
		go worker.NewIdempotencySweepWorker(memStore, cfg.Idempotency.SweepInterval).Start(ctx)
		idempotency = memStore
	}

	// 6. Services
	clientSvc := service.NewClientService(clientRepo, 0)
	if err := clientSvc.Seed(ctx, cfg.Clients); err != nil {
		log.Fatal().Err(err).Msg("failed to register clients")
	}
	authSvc := service.NewAuthService(clientRepo, jwtSecret, cfg.TokenTTL)

	hub := sse.NewHub()
	ledger := service.NewPaymentLedger(paymentRepo)
	paymentSvc := service.NewPaymentService(ledger, service.MockDecisionPolicy{}, idempotency, sse.NewHubNotifier(hub))

	// 7. Middleware and handlers
	var limiter *middleware.InvalidAuthRateLimiter
	if cfg.AuthLimit.MaxFailures > 0 {
		limiter = middleware.NewInvalidAuthRateLimiter(cfg.AuthLimit.MaxFailures, cfg.AuthLimit.Window)
		go limiter.Cleanup(ctx, 5*time.Minute)
	}

	handlers := &Handlers{
		Health:  handler.NewHealthHandler(),
		Auth:    handler.NewAuthHandler(authSvc, limiter),
		Payment: handler.NewPaymentHandler(paymentSvc),
		SSE:     handler.NewSSEHandler(hub),
	}
	jwtMw := middleware.NewJWTMiddleware(authSvc)

	// 8. Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, handlers, jwtMw)

	// 9. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 10. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	Payment *handler.PaymentHandler
	SSE     *handler.SSEHandler
}

func newRouter(cfg *config.Config, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSHosts))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, cfg.APIBasePath, handlers, jwtMiddleware)
	return router
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, basePath string, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/health", handlers.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group(basePath)
	api.POST("/auth/token", handlers.Auth.IssueToken)

	payments := api.Group("/payments")
	payments.Use(jwtMiddleware.Handle())
	{
		payments.POST("", handlers.Payment.CreatePayment)
		payments.GET("/:id", handlers.Payment.GetPayment)
		payments.POST("/:id/reverse", handlers.Payment.ReversePayment)
		payments.POST("/:id/cancel", handlers.Payment.CancelPayment)
	}

	admin := api.Group("/admin")
	admin.Use(jwtMiddleware.Handle(), middleware.RequireRole(service.RoleAdmin))
	{
		admin.GET("/events", handlers.SSE.Stream)
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
