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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/skdcommerce/storefront-api/internal/admin"
	"github.com/skdcommerce/storefront-api/internal/catalog"
	"github.com/skdcommerce/storefront-api/internal/config"
	"github.com/skdcommerce/storefront-api/internal/database"
	"github.com/skdcommerce/storefront-api/internal/events"
	"github.com/skdcommerce/storefront-api/internal/middleware"
	"github.com/skdcommerce/storefront-api/internal/orders"
	"github.com/skdcommerce/storefront-api/internal/payment"
	"github.com/skdcommerce/storefront-api/internal/settings"
	"github.com/skdcommerce/storefront-api/internal/zoho"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.Load()
	ctx := context.Background()

	tp, err := initTracer(ctx)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	mp, err := initMetrics(ctx)
	if err != nil {
		logger.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			logger.Error("Error shutting down meter", zap.Error(err))
		}
	}()

	dbPool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbPool.Close()

	if err := database.Bootstrap(ctx, dbPool, logger); err != nil {
		logger.Fatal("Failed to bootstrap schema", zap.Error(err))
	}

	sqlDB, err := database.OpenSQL(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open settings connection", zap.Error(err))
	}
	defer sqlDB.Close()

	// Cache de produtos: Redis quando habilitado, senão no-op
	var productCache catalog.Cache = catalog.NoopCache{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("⚠️ Redis unavailable; product cache disabled", zap.Error(err))
		} else {
			productCache = catalog.NewRedisCache(rdb)
			logger.Info("✅ Connected to Redis product cache")
		}
	}

	// Publicador de eventos: Kafka quando há broker configurado, senão no-op
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Kafka.Configured() {
		producer, err := events.InitProducer(cfg.Kafka)
		if err != nil {
			logger.Warn("⚠️ Kafka unavailable; event publishing disabled", zap.Error(err))
		} else {
			publisher = events.NewKafkaPublisher(producer, cfg.Kafka.Topic, logger)
			logger.Info("✅ Connected to Kafka", zap.String("broker", cfg.Kafka.Broker))
		}
	}
	defer publisher.Close()

	productRepo := catalog.NewProductRepository(dbPool)
	orderRepo := orders.NewOrderRepository(dbPool)
	settingsRepo := settings.NewSettingsRepository(sqlDB)

	catalogUseCase := catalog.NewCatalogUseCase(productRepo, productCache, publisher, logger)
	orderUseCase := orders.NewOrderUseCase(orderRepo, catalogUseCase, logger)

	zohoClient := zoho.NewClient(cfg.Zoho)
	zohoWorker := zoho.NewWorker(zohoClient, orderRepo, logger)
	defer zohoWorker.Close()

	tracer := otel.Tracer(serviceName)
	paymentUseCase := payment.NewPaymentUseCase(orderRepo, catalogUseCase, zohoWorker, publisher, cfg, tracer, logger)
	adminUseCase := admin.NewAdminUseCase(orderRepo, productRepo, zohoWorker, logger)

	catalogHandler := catalog.NewCatalogHandler(catalogUseCase)
	orderHandler := orders.NewOrderHandler(orderUseCase)
	paymentHandler := payment.NewPaymentHandler(paymentUseCase, logger)
	adminHandler := admin.NewAdminHandler(adminUseCase, catalogUseCase, cfg.Admin, logger)
	settingsHandler := settings.NewSettingsHandler(settingsRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", middleware.PrometheusHandler())

	catalogHandler.RegisterRoutes(r)
	orderHandler.RegisterRoutes(r)
	paymentHandler.RegisterRoutes(r)
	settingsHandler.RegisterPublicRoutes(r)
	adminGroup := adminHandler.RegisterRoutes(r)
	settingsHandler.RegisterAdminRoutes(adminGroup)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		logger.Info("🚀 Storefront API listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("ℹ️ Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
	}
}
