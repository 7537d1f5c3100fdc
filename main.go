package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-svc/cache"
	"inventory-svc/config"
	"inventory-svc/database"
	inventorygrpc "inventory-svc/grpc"
	"inventory-svc/handlers"
	"inventory-svc/kafka"
	"inventory-svc/middleware"
	"inventory-svc/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type routerDeps struct {
	store       *repository.Store
	db          handlers.Pinger
	listCache   handlers.ListCache
	publisher   handlers.OrderEventPublisher
	serviceName string
	logger      *zap.Logger
}

func newRouter(deps routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	// OpenTelemetry middleware must be first to extract trace context
	router.Use(otelgin.Middleware(deps.serviceName))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(deps.logger))
	router.Use(middleware.MetricsMiddleware())

	// Health check endpoint
	healthHandler := handlers.NewHealthHandler(deps.db, deps.serviceName, deps.logger)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	categoryHandler := handlers.NewCategoryHandler(deps.store, deps.listCache, deps.logger)
	router.GET("/categories", categoryHandler.GetCategories)

	productHandler := handlers.NewProductHandler(deps.store, deps.listCache, deps.logger)
	router.GET("/products", productHandler.GetProducts)
	router.GET("/products/:id", productHandler.GetProduct)
	router.POST("/products", productHandler.CreateProduct)

	orderHandler := handlers.NewOrderHandler(deps.store, deps.publisher, deps.logger)
	router.GET("/orders", orderHandler.GetOrders)
	router.GET("/orders/:id", orderHandler.GetOrder)
	router.POST("/orders", orderHandler.CreateOrder)

	return router
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	zapCfg := zap.NewProductionConfig()
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = atomicLevel
	return zapCfg.Build()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize OpenTelemetry
	shutdownTracing, err := middleware.InitTracing(cfg.ServiceName, cfg.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// Initialize database
	db, err := database.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get database handle", zap.Error(err))
	}

	// Optional Redis list cache
	var listCache handlers.ListCache
	var redisClient *redis.Client
	if cfg.CacheEnabled() {
		redisClient, err = cache.InitRedis(cfg.RedisAddr, cfg.RedisPassword, logger)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", zap.Error(err))
		} else {
			listCache = cache.NewListCache(redisClient, cfg.CacheTTL, logger)
		}
	}

	// Optional Kafka publisher
	var publisher handlers.OrderEventPublisher
	var kafkaPublisher *kafka.Publisher
	if cfg.KafkaEnabled() {
		producer, err := kafka.InitProducer(cfg.KafkaBrokers, logger)
		if err != nil {
			logger.Warn("Kafka unavailable, order events disabled", zap.Error(err))
		} else {
			kafkaPublisher = kafka.NewPublisher(producer, cfg.KafkaTopic, logger)
			publisher = kafkaPublisher
		}
	}

	router := newRouter(routerDeps{
		store:       repository.NewStore(db),
		db:          sqlDB,
		listCache:   listCache,
		publisher:   publisher,
		serviceName: cfg.ServiceName,
		logger:      logger,
	})

	// Start server
	restSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		if err := restSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Inventory Service REST API started", zap.String("addr", cfg.HTTPAddr))

	// Start gRPC health server
	grpcListener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("Failed to listen on gRPC port", zap.Error(err))
	}

	healthServer := inventorygrpc.NewHealthServer(sqlDB, 10*time.Second, logger)
	probeCtx, stopProbe := context.WithCancel(context.Background())
	go healthServer.Run(probeCtx)

	go func() {
		if err := healthServer.Serve(grpcListener); err != nil {
			logger.Fatal("Failed to start gRPC server", zap.Error(err))
		}
	}()

	logger.Info("Inventory Service gRPC health server started", zap.String("addr", cfg.GRPCAddr))

	// Call graceful shutdown function
	gracefulShutdown(restSrv, healthServer, stopProbe, db, redisClient, kafkaPublisher, shutdownTracing, logger)
}

// gracefulShutdown handles SIGINT/SIGTERM and shuts down all services gracefully
func gracefulShutdown(
	restSrv *http.Server,
	healthServer *inventorygrpc.HealthServer,
	stopProbe context.CancelFunc,
	db *gorm.DB,
	redisClient *redis.Client,
	publisher *kafka.Publisher,
	shutdownTracing func(),
	logger *zap.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received. Exiting...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop REST server
	if err := restSrv.Shutdown(ctx); err != nil {
		logger.Error("REST server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("REST server stopped gracefully")
	}

	// Stop gRPC server
	stopProbe()
	healthServer.GracefulStop()
	logger.Info("gRPC server stopped gracefully")

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close Kafka producer", zap.Error(err))
		} else {
			logger.Info("Kafka producer closed gracefully")
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close Redis cache", zap.Error(err))
		} else {
			logger.Info("Redis cache closed gracefully")
		}
	}

	// Close database
	if err := database.Close(db); err != nil {
		logger.Error("Failed to close database", zap.Error(err))
	} else {
		logger.Info("Database connection closed gracefully")
	}

	// Shutdown tracing
	shutdownTracing()
	logger.Info("Inventory Service exited gracefully")
}
