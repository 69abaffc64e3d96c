package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/YouSangSon/reports-service/internal/application/usecase"
	"github.com/YouSangSon/reports-service/internal/config"
	"github.com/YouSangSon/reports-service/internal/domain/event"
	"github.com/YouSangSon/reports-service/internal/domain/model"
	"github.com/YouSangSon/reports-service/internal/infrastructure/cache"
	"github.com/YouSangSon/reports-service/internal/infrastructure/messaging/kafka"
	"github.com/YouSangSon/reports-service/internal/infrastructure/persistence/mongodb"
	"github.com/YouSangSon/reports-service/internal/interfaces/http/handler"
	"github.com/YouSangSon/reports-service/internal/interfaces/http/router"
	"github.com/YouSangSon/reports-service/internal/pkg/auth"
	"github.com/YouSangSon/reports-service/internal/pkg/logger"
	"github.com/YouSangSon/reports-service/internal/pkg/metrics"
	"github.com/YouSangSon/reports-service/internal/pkg/retry"
	"github.com/YouSangSon/reports-service/internal/pkg/tracing"
	"github.com/YouSangSon/reports-service/internal/pkg/vault"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// @title Reports Service API
// @version 1.0
// @description Report and user management backed by MongoDB aggregation pipelines

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ============================================
	// 1. Configuration
	// ============================================
	cfg, err := config.LoadConfig("./configs", "config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
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
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	logger.Info(ctx, "starting reports service",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("go_version", runtime.Version()),
	)

	// ============================================
	// 3. Metrics Initialization
	// ============================================
	m := metrics.Init(cfg.Observability.Metrics.Namespace)

	// ============================================
	// 4. Tracing Initialization
	// ============================================
	tracingShutdown, err := tracing.Init(&tracing.Config{
		ServiceName:    cfg.Observability.Tracing.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		JaegerEndpoint: cfg.Observability.Tracing.JaegerEndpoint,
		SamplingRate:   cfg.Observability.Tracing.SamplingRate,
		Enabled:        cfg.Observability.Tracing.Enabled,
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

	// ============================================
	// 5. Vault (Optional)
	// ============================================
	var vaultClient *vault.Client
	if cfg.Vault.Enabled {
		vaultClient, err = retry.DoWithValue(ctx, retry.DefaultConfig("vault"), func(ctx context.Context) (*vault.Client, error) {
			return vault.NewClient(ctx, vaultConfig(cfg))
		})
		if err != nil {
			logger.Fatal(ctx, "failed to initialize vault client", zap.Error(err))
		}
		defer func() {
			if err := vaultClient.Close(context.Background()); err != nil {
				logger.Warn(ctx, "failed to close vault client", zap.Error(err))
			}
		}()

		if cfg.MongoDB.UseVault {
			creds, err := vaultClient.MongoDBCredentials(ctx)
			if err != nil {
				logger.Fatal(ctx, "failed to get mongodb credentials from vault", zap.Error(err))
			}
			cfg.MongoDB.Username = creds.Username
			cfg.MongoDB.Password = creds.Password
			logger.Info(ctx, "using vault-managed mongodb credentials",
				zap.Int("lease_duration", creds.LeaseDuration),
			)
		}
		if cfg.Auth.JWTSecret == "" {
			secret, err := vaultClient.AppSecret(ctx, "jwt_secret")
			if err != nil {
				logger.Fatal(ctx, "failed to get jwt secret from vault", zap.Error(err))
			}
			cfg.Auth.JWTSecret = secret
		}
	}

	// ============================================
	// 6. Document Store
	// ============================================
	registry, err := model.DefaultRegistry()
	if err != nil {
		logger.Fatal(ctx, "failed to build model registry", zap.Error(err))
	}

	mongoConfig, err := mongodb.ParseConfig(cfg.MongoDB.Settings())
	if err != nil {
		logger.Fatal(ctx, "invalid mongodb configuration", zap.Error(err))
	}

	store := mongodb.NewDocumentStore(mongoConfig, registry)
	if err := store.Connect(ctx); err != nil {
		logger.Fatal(ctx, "failed to create mongodb client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Error(ctx, "failed to close mongodb connection", zap.Error(err))
		}
	}()

	// 인덱스 생성 실패는 서비스를 degraded 상태로 시작합니다
	indexCtx, cancelIndex := context.WithTimeout(ctx, 30*time.Second)
	if err := store.CreateDB(indexCtx); err != nil {
		logger.Error(ctx, "failed to create indexes", zap.Error(err),
			logger.DatabaseHost(mongoConfig.Host),
			logger.DatabaseName(mongoConfig.Database),
		)
	}
	cancelIndex()

	// ============================================
	// 7. Redis (Optional)
	// ============================================
	var (
		redisClient *redis.Client
		limiter     *cache.RateLimiter
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewClient(ctx, cache.Config{
			Addr:         cfg.Redis.Addr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Warn(ctx, "redis unavailable, rate limiting disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			if cfg.Redis.RateLimit.Enabled {
				limiter = cache.NewRateLimiter(redisClient, cfg.Redis.RateLimit.Prefix,
					cfg.Redis.RateLimit.Limit, cfg.Redis.RateLimit.Window)
			}
		}
	}

	// ============================================
	// 8. Kafka Producer (Optional)
	// ============================================
	var (
		publisher     event.Publisher = event.NopPublisher{}
		kafkaProducer *kafka.Producer
	)
	if cfg.Kafka.Enabled {
		producerConfig, err := kafkaProducerConfig(cfg.Kafka)
		if err != nil {
			logger.Fatal(ctx, "invalid kafka configuration", zap.Error(err))
		}
		kafkaRetry := retry.DefaultConfig("kafka")
		kafkaRetry.Retryable = func(err error) bool {
			return errors.Is(err, sarama.ErrOutOfBrokers) || retry.IsRetryable(err)
		}
		kafkaProducer, err = retry.DoWithValue(ctx, kafkaRetry, func(ctx context.Context) (*kafka.Producer, error) {
			return kafka.NewProducer(producerConfig)
		})
		if err != nil {
			logger.Warn(ctx, "kafka unavailable, domain events disabled", zap.Error(err))
		} else {
			publisher = kafkaProducer
			defer func() {
				if err := kafkaProducer.Close(); err != nil {
					logger.Error(ctx, "failed to close kafka producer", zap.Error(err))
				}
			}()
		}
	}

	// ============================================
	// 9. Use Cases
	// ============================================
	tokens, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, cfg.Auth.RefreshTokenTTL)
	if err != nil {
		logger.Fatal(ctx, "failed to create token issuer", zap.Error(err))
	}

	reportUC := usecase.NewReportUseCase(store, publisher)
	userUC := usecase.NewUserUseCase(store, tokens, publisher)

	// ============================================
	// 10. Router
	// ============================================
	healthDeps := handler.HealthDependencies{
		MongoDB: store.Ping,
		Kafka:   kafkaProducer != nil,
	}
	if redisClient != nil {
		healthDeps.Redis = cache.Pinger(redisClient)
	}
	if vaultClient != nil {
		healthDeps.Vault = vaultClient.HealthCheck
	}

	deps := router.Dependencies{
		Reports: reportUC,
		Users:   userUC,
		Health:  handler.NewHealthHandler(cfg.App.Version, healthDeps),
		Tokens:  tokens,
		Metrics: m,
	}
	if limiter != nil {
		deps.Limiter = limiter
	}

	r := router.SetupRouter(router.Config{
		Environment:   cfg.App.Environment,
		EnableTracing: cfg.Observability.Tracing.Enabled,
		EnableMetrics: cfg.Observability.Metrics.Enabled,
		Admins:        cfg.Auth.Admins,
	}, deps)

	// ============================================
	// 11. HTTP Server
	// ============================================
	srv := &http.Server{
		Addr:           cfg.Server.HTTP.Addr(),
		Handler:        r,
		ReadTimeout:    cfg.Server.HTTP.ReadTimeout,
		WriteTimeout:   cfg.Server.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
		IdleTimeout:    120 * time.Second,
	}

	go func() {
		logger.Info(ctx, "starting HTTP server",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
			zap.Bool("redis", redisClient != nil),
			zap.Bool("kafka", kafkaProducer != nil),
			zap.Bool("vault", vaultClient != nil),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "failed to start HTTP server", zap.Error(err))
		}
	}()

	// ============================================
	// 12. Graceful Shutdown
	// ============================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server forced to shutdown", zap.Error(err))
	}

	logger.Info(ctx, "server exited successfully")
}

func vaultConfig(cfg *config.Config) *vault.Config {
	vc := vault.DefaultConfig()
	vc.Address = cfg.Vault.Address
	vc.AuthMethod = cfg.Vault.AuthMethod
	vc.Token = cfg.Vault.Token
	vc.RoleID = cfg.Vault.RoleID
	vc.SecretID = cfg.Vault.SecretID
	vc.K8sRole = cfg.Vault.K8sRole
	vc.Namespace = cfg.Vault.Namespace
	vc.TLSSkipVerify = cfg.Vault.TLS.SkipVerify
	vc.CACert = cfg.Vault.TLS.CACert
	if cfg.Vault.Paths.MongoDB != "" {
		vc.MongoDBPath = cfg.Vault.Paths.MongoDB
	}
	if cfg.Vault.Paths.Secrets != "" {
		vc.SecretsPath = cfg.Vault.Paths.Secrets
	}
	if cfg.Vault.Timeout > 0 {
		vc.Timeout = cfg.Vault.Timeout
	}
	return vc
}

func kafkaProducerConfig(cfg config.KafkaConfig) (*kafka.ProducerConfig, error) {
	var codec sarama.CompressionCodec
	if cfg.Producer.Compression != "" {
		if err := codec.UnmarshalText([]byte(cfg.Producer.Compression)); err != nil {
			return nil, fmt.Errorf("invalid kafka compression %q: %w", cfg.Producer.Compression, err)
		}
	}

	return &kafka.ProducerConfig{
		Brokers:          cfg.Brokers,
		ClientID:         cfg.ClientID,
		MaxMessageBytes:  cfg.Producer.MaxMessageBytes,
		RequiredAcks:     sarama.RequiredAcks(cfg.Producer.RequiredAcks),
		Compression:      codec,
		MaxRetries:       cfg.Producer.MaxRetries,
		RetryBackoff:     cfg.Producer.RetryBackoff,
		EnableIdempotent: cfg.Producer.EnableIdempotent,
		DefaultTopic:     cfg.Topics.Default,
		Topics: map[event.Type]string{
			event.ReportCreated:  cfg.Topics.ReportCreated,
			event.ReportUpdated:  cfg.Topics.ReportUpdated,
			event.ReportDeleted:  cfg.Topics.ReportDeleted,
			event.UserRegistered: cfg.Topics.UserRegistered,
			event.UserDeleted:    cfg.Topics.UserDeleted,
		},
	}, nil
}
