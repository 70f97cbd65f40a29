package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Baaaki/inmobiliaria-api/internal/broker"
	"github.com/Baaaki/inmobiliaria-api/internal/config"
	"github.com/Baaaki/inmobiliaria-api/internal/database"
	"github.com/Baaaki/inmobiliaria-api/internal/handler"
	"github.com/Baaaki/inmobiliaria-api/internal/middleware"
	"github.com/Baaaki/inmobiliaria-api/internal/repository"
	"github.com/Baaaki/inmobiliaria-api/internal/service"
	"github.com/Baaaki/inmobiliaria-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.Init(cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Redis is optional: without it there is no rate limiting and task events
	// are dropped.
	var (
		events      broker.EventPublisher = broker.NoopPublisher{}
		rateLimiter *middleware.RateLimiter
	)
	if cfg.RedisURL != "" {
		redisClient, err := connectRedis(cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()

		events = broker.NewRedisEventBroker(redisClient)
		rateLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
			MaxRequests: cfg.RateLimitMaxRequests,
			Window:      cfg.RateLimitWindow,
			KeyPrefix:   "ratelimit:auth",
		})
		logger.Log.Info("Redis connected: rate limiting and task events enabled")
	} else {
		logger.Log.Warn("REDIS_URL not set: rate limiting and task events disabled")
	}
	defer events.Close()

	repos := repository.NewRepositories(db)
	tx := repository.NewTxRunner(db)

	authService := service.NewAuthService(repos.Users, cfg.JWTSecret, cfg.JWTExpiry)
	userService := service.NewUserService(repos.Users, repos.Properties)
	propertyService := service.NewPropertyService(repos, tx, events)
	taskService := service.NewTaskService(repos, tx, events)

	// Reconcile tasks left behind by an interrupted cascade before serving.
	sweepCtx, cancelSweep := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := propertyService.SweepOrphanTasks(sweepCtx); err != nil {
		logger.Log.Warn("Startup orphan sweep failed", zap.Error(err))
	}
	cancelSweep()

	router := handler.NewRouter(handler.RouterDeps{
		AuthService:        authService,
		UserService:        userService,
		PropertyService:    propertyService,
		TaskService:        taskService,
		RateLimiter:        rateLimiter,
		JWTSecret:          cfg.JWTSecret,
		Environment:        cfg.Environment,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server starting",
			zap.String("addr", cfg.ServerPort),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutdown signal received, stopping server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Log.Info("Server stopped")
}

func connectRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
