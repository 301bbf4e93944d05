package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dipeshss4/tripgo-auth/internal/core/port"
	"github.com/dipeshss4/tripgo-auth/internal/infra/config"
	"github.com/dipeshss4/tripgo-auth/internal/infra/database"
	kafkainfra "github.com/dipeshss4/tripgo-auth/internal/infra/kafka"
	"github.com/dipeshss4/tripgo-auth/internal/infra/logger"
	redisinfra "github.com/dipeshss4/tripgo-auth/internal/infra/redis"
	"github.com/dipeshss4/tripgo-auth/internal/infra/security"
	"github.com/dipeshss4/tripgo-auth/internal/infra/telemetry"
	"github.com/dipeshss4/tripgo-auth/internal/repository/memory"
	postgresrepo "github.com/dipeshss4/tripgo-auth/internal/repository/postgres"
	redisrepo "github.com/dipeshss4/tripgo-auth/internal/repository/redis"
	"github.com/dipeshss4/tripgo-auth/internal/transport/http/routes"
	"github.com/dipeshss4/tripgo-auth/internal/usecase"
)

// Application owns every long-lived component and their shutdown order.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	tracer   *telemetry.TracerProvider
	sessions *usecase.SessionService
}

// New wires the full service graph from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	if err := security.ConfigureArgon2(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	issuer, err := security.NewTokenIssuer(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init token issuer: %w", err)
	}

	// Session state, revocations, and throttle records live in Redis when it
	// is enabled so that replicas share them. The in-process stores are a
	// single-node fallback.
	var (
		redisClient  *redisinfra.Client
		sessionStore port.SessionRegistry
		revocations  port.RevocationList
		attemptStore port.LoginAttemptStore
	)
	if cfg.Redis.Enabled {
		redisClient, err = redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		sessionStore = redisrepo.NewSessionRegistry(redisClient.Client(), cfg.Redis.KeyPrefix)
		revocations = redisrepo.NewRevocationList(redisClient.Client(), cfg.Redis.KeyPrefix)
		attemptStore = redisrepo.NewLoginAttemptStore(redisClient.Client(), cfg.Redis.KeyPrefix, throttleRecordTTL(cfg.Lockout))
	} else {
		log.Info("redis disabled, using in-process session state")
		sessionStore = memory.NewSessionRegistry()
		revocations = memory.NewRevocationList(cfg.Revocation.MaxEntries)
		attemptStore = memory.NewLoginAttemptStore()
	}

	var (
		producer *kafkainfra.Producer
		events   port.SecurityEventPublisher
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("kafka producer init failed, using stub publisher", zap.Error(err))
			events = kafkainfra.NewStubPublisher(log)
		} else {
			events = kafkainfra.NewEventPublisher(producer, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		events = kafkainfra.NewStubPublisher(log)
	}

	metrics := telemetry.NewMetrics()

	tenantRepo := postgresrepo.NewTenantRepository(pool)
	userRepo := postgresrepo.NewUserRepository(pool)

	throttle := usecase.NewLoginThrottle(attemptStore, cfg.Lockout)
	trust := usecase.NewTrustService(sessionStore)
	tenantService := usecase.NewTenantService(tenantRepo, cfg.Tenant)
	authService := usecase.NewAuthService(userRepo, sessionStore, revocations, throttle, trust, issuer, events, metrics, log)
	sessionService := usecase.NewSessionService(sessionStore, revocations, events, metrics, log, cfg.Session, cfg.Revocation)

	deps := routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Metrics:  metrics,
		Database: pool,
		Services: routes.ServiceSet{
			Auth:     authService,
			Sessions: sessionService,
			Tenants:  tenantService,
		},
	}
	if redisClient != nil {
		deps.Cache = redisClient
	}

	return &Application{
		cfg:      cfg,
		engine:   routes.Register(deps),
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		tracer:   tracer,
		sessions: sessionService,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down in reverse
// dependency order.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.pool.Close()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.tracer.Shutdown(shutdownCtx)
	}()

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go a.sessions.RunSweeper(sweepCtx)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting auth API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

// throttleRecordTTL keeps attempt records alive long enough to outlast both
// the counting window and any active lock.
func throttleRecordTTL(cfg config.LockoutSettings) time.Duration {
	window := cfg.Window
	if window <= 0 {
		window = time.Hour
	}
	lock := cfg.Duration
	if lock <= 0 {
		lock = 15 * time.Minute
	}
	return window + lock
}
