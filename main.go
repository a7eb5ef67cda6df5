package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supply-service/controllers"
	"supply-service/database"
	"supply-service/jobs"
	"supply-service/models"
	"supply-service/predictor"
	"supply-service/realtime"
	"supply-service/repository"
	"supply-service/routes"
	"supply-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	// Database
	if err := database.Connect(logger, cfg.PostgresDSN()); err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}

	// Push channel (non-fatal: notifications stay durable in Postgres)
	var publisher realtime.Publisher = realtime.NoopPublisher{}
	if rdb, err := realtime.NewRedisClient(cfg.RedisURL); err != nil {
		logger.Warn("Redis unavailable, push delivery disabled", zap.Error(err))
	} else {
		publisher = realtime.NewRedisPublisher(rdb, cfg.BroadcastTopic, cfg.UserTopicPrefix, logger)
	}

	// Dependency injection
	itemRepo := repository.NewGormItemRepository(database.DB)
	requestRepo := repository.NewGormSupplyRequestRepository(database.DB)
	messageRepo := repository.NewGormMessageRepository(database.DB)
	notificationRepo := repository.NewGormNotificationRepository(database.DB)

	notificationService := services.NewNotificationService(notificationRepo, publisher, logger)
	requestService := services.NewSupplyRequestService(requestRepo, itemRepo, notificationService, logger)
	messageService := services.NewMessageService(messageRepo, requestRepo, logger)

	requestController := controllers.NewSupplyRequestController(requestService)
	messageController := controllers.NewMessageController(messageService)
	notificationController := controllers.NewNotificationController(notificationService)

	// Periodic jobs
	jobCtx, jobCancel := context.WithCancel(context.Background())
	defer jobCancel()

	scanner := jobs.NewLowStockScanner(itemRepo, notificationService,
		models.CategoryClassSupply, cfg.LowStockThreshold, cfg.LowStockInterval, logger)
	scanner.Start(jobCtx)

	estimator := jobs.NewLifespanEstimator(itemRepo,
		predictor.NewClient(cfg.PredictorURL, cfg.PredictorTimeout), cfg.LifespanInterval, logger)
	estimator.Start(jobCtx)

	// Router
	r := gin.New()
	r.Use(gin.Recovery())

	// Request logging
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http_request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	})

	// Request timeout
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	routes.RegisterRoutes(r, requestController, messageController, notificationController)

	// HTTP server
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("Supply service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Initiating graceful shutdown...")
	jobCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := database.Close(); err != nil {
		logger.Error("Database close error", zap.Error(err))
	}

	logger.Info("Supply service stopped gracefully")
}
