package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	StorageDriver  string
	MigrationsPath string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	JWTSecret      string
	JWTIssuer      string

	CORSAllowedOrigins []string
	RateLimit          string // ulule/limiter format, e.g. "300-M"
	RedisURL           string // optional; shares rate limit counters across instances

	// Ledger
	Epsilon      decimal.Decimal
	TxTimeout    time.Duration
	LockTimeout  time.Duration
	AgingWorkers int

	// AccountRoleCodes binds each posting role to a chart-of-accounts code.
	// Codes are resolved to account ids once at startup.
	AccountRoleCodes map[domain.AccountRole]string
	// BootstrapRoleAccounts creates missing role accounts at startup.
	BootstrapRoleAccounts bool
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	v.SetDefault("JWT_ISSUER", "furniture-erp")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT", "600-M")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("LEDGER_EPSILON", "0.01")
	v.SetDefault("LEDGER_TX_TIMEOUT", "10s")
	v.SetDefault("LEDGER_LOCK_TIMEOUT", "3s")
	v.SetDefault("AGING_WORKERS", 4)
	v.SetDefault("LEDGER_BOOTSTRAP_ROLES", true)
	for _, role := range domain.AccountRoles {
		v.SetDefault(roleEnvKey(role), "")
	}

	// Environment variables override defaults and the .env file.
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:    v.GetString("PGSQL_URL"),
		StorageDriver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		Port:           v.GetString("PORT"),
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:  v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTIssuer:      v.GetString("JWT_ISSUER"),
		RateLimit:      v.GetString("RATE_LIMIT"),
		RedisURL:       v.GetString("REDIS_URL"),
		AgingWorkers:   v.GetInt("AGING_WORKERS"),

		BootstrapRoleAccounts: v.GetBool("LEDGER_BOOTSTRAP_ROLES"),
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER=%s", StoragePostgres)
		}
	case StorageMemory:
		log.Println("Warning: STORAGE_DRIVER=memory, ledger state is lost on restart.")
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	eps, err := decimal.NewFromString(v.GetString("LEDGER_EPSILON"))
	if err != nil || !eps.IsPositive() {
		return nil, fmt.Errorf("LEDGER_EPSILON must be a positive decimal, got %q", v.GetString("LEDGER_EPSILON"))
	}
	cfg.Epsilon = eps

	cfg.TxTimeout = parseDuration(v, "LEDGER_TX_TIMEOUT", 10*time.Second)
	cfg.LockTimeout = parseDuration(v, "LEDGER_LOCK_TIMEOUT", 3*time.Second)

	if cfg.AgingWorkers < 1 {
		log.Printf("Warning: AGING_WORKERS must be at least 1 ('%d'). Defaulting to 1.\n", cfg.AgingWorkers)
		cfg.AgingWorkers = 1
	}

	cfg.AccountRoleCodes = make(map[domain.AccountRole]string, len(domain.AccountRoles))
	for _, role := range domain.AccountRoles {
		if code := strings.TrimSpace(v.GetString(roleEnvKey(role))); code != "" {
			cfg.AccountRoleCodes[role] = code
		}
	}

	return cfg, nil
}

// roleEnvKey is the environment variable that binds role to an account code.
func roleEnvKey(role domain.AccountRole) string {
	return "LEDGER_ROLE_" + string(role)
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		return fallback
	}
	return d
}
