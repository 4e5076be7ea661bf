package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/furniture_erp_ledger/internal/adapters/database/pgsql"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/services"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
	"github.com/SscSPs/furniture_erp_ledger/internal/handlers"
	"github.com/SscSPs/furniture_erp_ledger/internal/middleware"
	"github.com/SscSPs/furniture_erp_ledger/internal/platform/config"
	"github.com/SscSPs/furniture_erp_ledger/internal/platform/metrics"
	"github.com/SscSPs/furniture_erp_ledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// @title Furniture ERP Ledger API
// @version 1.0
// @description Double-entry accounting core of the furniture ERP: chart of accounts, journal posting, reversals and reports.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := dto.RegisterValidators(); err != nil {
		logger.Error("Failed to register request validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	repos, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("driver", cfg.StorageDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStorage()

	ledgerCfg := services.LedgerConfig{
		Epsilon:      cfg.Epsilon,
		AgingWorkers: cfg.AgingWorkers,
	}

	roleCodes := cfg.AccountRoleCodes
	if cfg.BootstrapRoleAccounts {
		roleCodes, err = services.BootstrapRoleAccounts(ctx, services.NewAccountService(ledgerCfg, repos.UnitOfWork, repos.Accounts), roleCodes)
		if err != nil {
			logger.Error("Failed to bootstrap role accounts", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Document posting needs every role mapped to an existing account.
	roles, err := services.ResolveAccountRoles(ctx, repos.Accounts, roleCodes)
	if err != nil {
		logger.Error("Failed to resolve account roles", slog.String("error", err.Error()))
		os.Exit(1)
	}

	serviceContainer := services.NewServiceContainer(ledgerCfg, repos, roles)

	metrics.Init()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, metrics, recovery)
	r.Use(
		cors.New(corsConfig(cfg)),
		middleware.StructuredLoggingMiddleware(logger),
		metrics.GinMiddleware(),
		gin.Recovery(),
	)

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit, newRedisClient(cfg, logger))
	if err != nil {
		logger.Error("Failed to configure rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(rateLimiter))

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openStorage builds the repositories for the configured driver and returns a cleanup func.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("Using in-memory storage, ledger data will not survive a restart")
		return memory.NewStore().Provider(), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		database.ClosePgxPool(dbPool)
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool, cfg.TxTimeout, cfg.LockTimeout), func() { database.ClosePgxPool(dbPool) }, nil
}

// newRedisClient returns nil when no REDIS_URL is configured, which keeps
// rate limit counters in memory.
func newRedisClient(cfg *config.Config, logger *slog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("Invalid REDIS_URL, falling back to in-memory rate limiting", slog.String("error", err.Error()))
		return nil
	}
	return redis.NewClient(opts)
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return c
}
