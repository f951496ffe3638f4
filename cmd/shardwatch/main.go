package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/YouSangSon/shardwatch/internal/config"
	"github.com/YouSangSon/shardwatch/internal/interceptor"
	grpcHandler "github.com/YouSangSon/shardwatch/internal/interfaces/grpc/handler"
	grpcInterceptor "github.com/YouSangSon/shardwatch/internal/interfaces/grpc/interceptor"
	httpHandler "github.com/YouSangSon/shardwatch/internal/interfaces/http/handler"
	"github.com/YouSangSon/shardwatch/internal/interfaces/http/middleware"
	"github.com/YouSangSon/shardwatch/internal/interfaces/http/router"
	"github.com/YouSangSon/shardwatch/internal/pkg/logger"
	"github.com/YouSangSon/shardwatch/internal/pkg/metrics"
	"github.com/YouSangSon/shardwatch/internal/pkg/tracing"
	"github.com/YouSangSon/shardwatch/internal/shard"
	"github.com/YouSangSon/shardwatch/internal/transport"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// ============================================
	// 1. Configuration
	// ============================================
	configPath := os.Getenv("SHARDWATCH_CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs"
	}
	loader := config.NewLoader(configPath, "config")
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// ============================================
	// 2. Logger Initialization
	// ============================================
	if err := logger.Init(logger.Config{
		Level:       cfg.Observability.Logging.Level,
		Environment: cfg.App.Environment,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
		NodeName:    cfg.App.NodeName,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info(ctx, "starting shardwatch",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("config_file", loader.ConfigFile()),
		zap.String("go_version", runtime.Version()),
	)

	// ============================================
	// 3. Metrics Initialization
	// ============================================
	m := metrics.Init(cfg.Observability.Metrics.Namespace)
	logger.Info(ctx, "metrics initialized")

	// ============================================
	// 4. Tracing Initialization
	// ============================================
	if cfg.Observability.Tracing.Enabled {
		tracingShutdown, err := tracing.Init(&tracing.Config{
			ServiceName:    cfg.Observability.Tracing.ServiceName,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			JaegerEndpoint: cfg.Observability.Tracing.JaegerEndpoint,
			SamplingRate:   cfg.Observability.Tracing.SamplingRate,
			Enabled:        true,
		})
		if err != nil {
			logger.Fatal(ctx, "failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracingShutdown(shutdownCtx); err != nil {
				logger.Error(ctx, "failed to shutdown tracing", zap.Error(err))
			}
		}()
		logger.Info(ctx, "tracing initialized", zap.String("jaeger_endpoint", cfg.Observability.Tracing.JaegerEndpoint))
	}

	// ============================================
	// 5. Redis Client Initialization (Optional)
	// ============================================
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = newRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal(ctx, "failed to initialize redis client", zap.Error(err))
		}
		defer redisClient.Close()
		logger.Info(ctx, "redis client initialized", zap.String("addr", cfg.Redis.Addr()))
	}

	// ============================================
	// 6. Interception Gate
	// ============================================
	var gateClient redis.UniversalClient
	if redisClient != nil {
		gateClient = redisClient
	}
	gate, watcher, err := buildGate(ctx, cfg, gateClient)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize interception gate", zap.Error(err))
	}
	if watcher != nil {
		go watcher.Run(ctx)
	}
	logger.Info(ctx, "interception gate initialized",
		zap.String("source", cfg.Interception.Gate.Source),
		logger.Enabled(gate.Enabled()),
	)

	// ============================================
	// 7. Timing Sinks
	// ============================================
	sinks, err := buildSinks(ctx, cfg.Sinks, m)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize sinks", zap.Error(err))
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			logger.Error(ctx, "failed to close sinks", zap.Error(err))
		}
	}()

	// ============================================
	// 8. Transport Service & Shard Handlers
	// ============================================
	svc := transport.NewService(transport.WithVersion(cfg.App.Version))
	svc.AddInterceptor(interceptor.NewTransportInterceptor(gate,
		interceptor.WithSink(sinks.sink),
		interceptor.WithMetrics(m),
	))
	shard.RegisterHandlers(svc, shard.NewStore())
	logger.Info(ctx, "shard write handlers registered")

	// ============================================
	// 9. gRPC Server Setup with Interceptors
	// ============================================
	unaryInterceptors := []grpc.UnaryServerInterceptor{
		grpcInterceptor.UnaryRecoveryInterceptor(),
	}
	streamInterceptors := []grpc.StreamServerInterceptor{
		grpcInterceptor.StreamRecoveryInterceptor(),
	}

	if cfg.Observability.Tracing.Enabled {
		unaryInterceptors = append(unaryInterceptors, grpcInterceptor.UnaryTracingInterceptor())
		streamInterceptors = append(streamInterceptors, grpcInterceptor.StreamTracingInterceptor())
	}

	unaryInterceptors = append(unaryInterceptors, grpcInterceptor.UnaryLoggingInterceptor())
	streamInterceptors = append(streamInterceptors, grpcInterceptor.StreamLoggingInterceptor())

	if cfg.Observability.Metrics.Enabled {
		unaryInterceptors = append(unaryInterceptors, grpcInterceptor.UnaryMetricsInterceptor(m))
		streamInterceptors = append(streamInterceptors, grpcInterceptor.StreamMetricsInterceptor(m))
	}

	unaryInterceptors = append(unaryInterceptors, grpcInterceptor.UnaryErrorHandlerInterceptor())
	streamInterceptors = append(streamInterceptors, grpcInterceptor.StreamErrorHandlerInterceptor())

	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(cfg.Server.GRPC.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.Server.GRPC.MaxSendMsgSize),
		grpc.ChainUnaryInterceptor(unaryInterceptors...),
		grpc.ChainStreamInterceptor(streamInterceptors...),
	)

	grpcHandler.NewShardWriteHandler(svc).Register(grpcServer)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	if cfg.Server.GRPC.EnableReflection {
		reflection.Register(grpcServer)
	}

	// ============================================
	// 10. Admin HTTP Server
	// ============================================
	healthHandler := httpHandler.NewHealthHandler(cfg.App.Version)
	if redisClient != nil {
		healthHandler.AddCheck("redis", watcher != nil, httpHandler.RedisCheck(redisClient))
	}
	if sinks.breaker != nil {
		healthHandler.AddCheck("kafka_sink", false, httpHandler.BreakerCheck(sinks.breaker.State))
	}

	var adminLimiter *middleware.RateLimiter
	if redisClient != nil && cfg.Server.HTTP.AdminRateLimit > 0 {
		adminLimiter = middleware.NewRateLimiter(redisClient, "shardwatch:admin:ratelimit",
			cfg.Server.HTTP.AdminRateLimit, cfg.Server.HTTP.AdminRateWindow)
	}

	httpServer := &http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port),
		Handler: router.SetupRouter(router.Config{
			Health:         healthHandler,
			Interception:   httpHandler.NewInterceptionHandler(gate, watcher),
			AdminRateLimit: adminLimiter,
			Metrics:        m,
			EnableTracing:  cfg.Observability.Tracing.Enabled,
			EnableMetrics:  cfg.Observability.Metrics.Enabled,
			Environment:    cfg.App.Environment,
		}),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
	}

	// ============================================
	// 11. Config Watch
	// ============================================
	loader.Watch(func(prev, next *config.Config) {
		if watcher == nil && prev.Interception.Enabled != next.Interception.Enabled {
			gate.Set(next.Interception.Enabled)
			logger.Info(ctx, "interception gate changed",
				logger.Component("config"),
				logger.Enabled(next.Interception.Enabled),
			)
		}
	}, func(err error) {
		logger.Warn(ctx, "ignoring invalid config change", zap.Error(err))
	})

	// ============================================
	// 12. Start Servers
	// ============================================
	grpcAddr := fmt.Sprintf("%s:%d", cfg.Server.GRPC.Host, cfg.Server.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logger.Fatal(ctx, "failed to listen", zap.String("addr", grpcAddr), zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting gRPC server", zap.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal(ctx, "failed to serve gRPC", zap.Error(err))
		}
	}()

	go func() {
		logger.Info(ctx, "starting admin HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "failed to serve admin HTTP", zap.Error(err))
		}
	}()

	healthServer.SetServingStatus(grpcHandler.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthHandler.SetReady(true)

	// ============================================
	// 13. Graceful Shutdown
	// ============================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down shardwatch gracefully...")
	healthHandler.SetReady(false)
	healthServer.Shutdown()

	shutdownTimeout := cfg.Server.HTTP.ShutdownTimeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "admin HTTP server shutdown failed", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		logger.Info(ctx, "gRPC server stopped gracefully")
	case <-shutdownCtx.Done():
		logger.Warn(ctx, "gRPC server shutdown timeout, forcing stop")
		grpcServer.Stop()
	}

	cancel()
	logger.Info(ctx, "shardwatch exited successfully")
}
