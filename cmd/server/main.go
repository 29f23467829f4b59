package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/cashledger/internal/adapter/directory"
	httpAdapter "github.com/iho/cashledger/internal/adapter/http"
	"github.com/iho/cashledger/internal/adapter/http/handler"
	"github.com/iho/cashledger/internal/adapter/http/middleware"
	"github.com/iho/cashledger/internal/adapter/repository"
	postgresRepo "github.com/iho/cashledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cashledger/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/cashledger/internal/adapter/repository/sqlite"
	"github.com/iho/cashledger/internal/infrastructure/auth"
	"github.com/iho/cashledger/internal/infrastructure/config"
	"github.com/iho/cashledger/internal/infrastructure/keylock"
	"github.com/iho/cashledger/internal/infrastructure/logger"
	"github.com/iho/cashledger/internal/infrastructure/metrics"
	"github.com/iho/cashledger/internal/infrastructure/postgres"
	"github.com/iho/cashledger/internal/infrastructure/redis"
	"github.com/iho/cashledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "cashledger",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// store is one ledger backend with everything the coordinator needs from it.
type store struct {
	txManager     usecase.TransactionManager
	operationRepo usecase.OperationRepository
	transferRepo  usecase.TransferRepository
	directory     usecase.AccountDirectory
	isRetryable   repository.Classifier
	ping          handler.PingFunc
	close         func()
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	checks := map[string]handler.Pinger{"database": st.ping}

	var (
		redisClient      *goredis.Client
		idempotencyStore usecase.IdempotencyStore
	)
	accounts := st.directory

	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL, 10, 5*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		accounts = directory.NewCached(accounts, redisRepo.NewCache(redisClient), cfg.DirectoryCacheTTL, log)
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	ledger := usecase.NewTransactionUseCase(
		st.txManager,
		st.operationRepo,
		st.transferRepo,
		accounts,
		keylock.New(),
		usecase.WithRetrier(repository.NewRetrier(st.isRetryable, cfg.RetryMaxAttempts, log)),
		usecase.WithRecorder(m),
		usecase.WithLogger(log.With().Str("component", "ledger").Logger()),
	)

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(ledger),
		TransferHandler:  handler.NewTransferHandler(ledger),
		HealthHandler:    handler.NewHealthHandler(checks),
		AuthHandler:      handler.NewAuthHandler(),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Metrics:          m,
		MetricsHandler:   promhttp.Handler(),
		Logger:           log,
	}

	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		routerCfg.RateLimiter = limiter
		go sweepLimiters(ctx, limiter, log)
	}

	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("JWT authentication enabled")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("driver", cfg.DatabaseDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// openStore connects the configured ledger backend and its account directory.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := sqliteRepo.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite store")

		accounts, err := openDirectory(cfg, sqliteRepo.NewAccountDirectory(db))
		if err != nil {
			db.Close()
			return nil, err
		}

		return &store{
			txManager:     sqliteRepo.NewTxManager(db),
			operationRepo: sqliteRepo.NewOperationRepository(db),
			transferRepo:  sqliteRepo.NewTransferRepository(db),
			directory:     accounts,
			isRetryable:   sqliteRepo.IsRetryableError,
			ping:          pingSQL(db),
			close:         func() { db.Close() },
		}, nil

	default:
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return nil, err
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Info().Msg("connected to postgres")

		accounts, err := openDirectory(cfg, postgresRepo.NewAccountDirectory(pool))
		if err != nil {
			pool.Close()
			return nil, err
		}

		return &store{
			txManager:     postgresRepo.NewTxManager(pool),
			operationRepo: postgresRepo.NewOperationRepository(pool),
			transferRepo:  postgresRepo.NewTransferRepository(pool),
			directory:     accounts,
			isRetryable:   postgresRepo.IsRetryableError,
			ping:          pingPool(pool),
			close:         pool.Close,
		}, nil
	}
}

// openDirectory picks the account directory. tableDirectory reads the
// accounts table of the configured store.
func openDirectory(cfg *config.Config, tableDirectory usecase.AccountDirectory) (usecase.AccountDirectory, error) {
	if cfg.DirectorySource != config.DirectoryFile {
		return tableDirectory, nil
	}

	static, err := directory.LoadFile(cfg.DirectoryFile)
	if err != nil {
		return nil, err
	}
	return static, nil
}

func pingSQL(db *sql.DB) handler.PingFunc {
	return db.PingContext
}

func pingPool(pool *pgxpool.Pool) handler.PingFunc {
	return pool.Ping
}

func sweepLimiters(ctx context.Context, limiter *middleware.RateLimiter, log zerolog.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := limiter.CleanupLimiters(time.Hour); removed > 0 {
				log.Debug().Int("removed", removed).Msg("dropped idle rate limiters")
			}
		}
	}
}
