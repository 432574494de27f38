package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahwlsqja/channel-optin/docs"
	"github.com/ahwlsqja/channel-optin/internal/common/handler"
	"github.com/ahwlsqja/channel-optin/internal/common/middleware"
	"github.com/ahwlsqja/channel-optin/internal/config"
	"github.com/ahwlsqja/channel-optin/internal/optin"
	"github.com/ahwlsqja/channel-optin/pkg/caip"
	"github.com/ahwlsqja/channel-optin/pkg/eip712"
	"github.com/ahwlsqja/channel-optin/pkg/environment"
	pkgredis "github.com/ahwlsqja/channel-optin/pkg/redis"
	"github.com/ahwlsqja/channel-optin/pkg/replay"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Channel Opt-in API
// @version 1.0
// @description Verifies EIP-712 signed channel subscribe and unsubscribe requests

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	// 1) Logger
	logger, err := initLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 2) Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	env, _ := cfg.Verifier.ParsedEnv()

	logger.Info("starting server",
		zap.String("environment", cfg.Server.Environment),
		zap.String("optin_env", env.String()),
		zap.String("addr", cfg.Server.Addr()),
	)

	// 3) Redis (fail-fast)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	rdb, err := pkgredis.Connect(ctx, pkgredis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cancel()
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// 4) Router
	router := setupRouter(cfg, env, logger, rdb)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	logger.Info("server started",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("swagger", fmt.Sprintf("http://localhost:%d/swagger/index.html", cfg.Server.Port)),
	)

	// 5) Wait for termination
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func initLogger() (*zap.Logger, error) {
	env := os.Getenv("ENVIRONMENT")
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// chainIDSource picks where bare user addresses get their chain:
// the configured node when CHAIN_RPC_URL is set, else the environment table.
// Either way answers are cached in Redis.
func chainIDSource(cfg *config.Config, env environment.Env, logger *zap.Logger, rdb *redis.Client) caip.ChainIDSource {
	var source caip.ChainIDSource = caip.NewStaticChainIDSource(environment.Static)
	if cfg.Chain.RPCURL != "" {
		source = caip.NewRPCChainIDSource(map[environment.Env]string{env: cfg.Chain.RPCURL}, logger)
	}
	return caip.NewCachedChainIDSource(source, rdb, cfg.Chain.ChainCacheTTL, logger)
}

func setupRouter(cfg *config.Config, env environment.Env, logger *zap.Logger, rdb *redis.Client) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger, "/health", "/ready", "/metrics"))

	// Swagger
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.Server.Port)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoints
	healthHandler := handler.NewHealthHandler(map[string]handler.Check{
		"redis": func(ctx context.Context) error { return pkgredis.Ping(ctx, rdb) },
	})
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ============================================================================
	// Dependencies Setup
	// ============================================================================

	// Proof store for replay protection
	proofStore := replay.NewRedisStore(rdb, cfg.Verifier.ProofTTL, logger)

	// EIP-712 verifier for subscription proofs
	verifier := eip712.NewEthVerifier(proofStore, logger)

	resolver := caip.NewResolver(chainIDSource(cfg, env, logger, rdb), logger)

	// ============================================================================
	// Service & Handler Setup
	// ============================================================================

	optinService := optin.NewService(optin.ServiceConfig{
		Env:               env,
		VerifyingContract: cfg.Verifier.VerifyingContract,
	}, environment.Static, resolver, verifier, optin.NewMetrics(prometheus.DefaultRegisterer), logger)
	optinHandler := optin.NewHandler(optinService)

	// ============================================================================
	// Route Registration
	// ============================================================================

	optinHandler.RegisterRoutes(router.Group("/apis"))

	return router
}
