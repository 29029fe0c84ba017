// Package config loads service configuration from the environment, reading a
// .env file first when one exists.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory     = "memory"
	StoreRedis      = "redis"
	StoreClickHouse = "clickhouse"
	StorePostgres   = "postgres"
	StoreSQLite     = "sqlite"
)

type Config struct {
	Port    string `env:"PORT"     envDefault:"8080"`
	GinMode string `env:"GIN_MODE"`
	AppEnv  string `env:"APP_ENV"  envDefault:"production"`

	StoreBackend    string        `env:"ANALYTICS_STORE"             envDefault:"memory"`
	StoreName       string        `env:"ANALYTICS_STORE_NAME"        envDefault:"a1-diagnosis-analytics"`
	DefaultDays     int           `env:"ANALYTICS_DEFAULT_DAYS"      envDefault:"7"`
	RetentionDays   int           `env:"ANALYTICS_RETENTION_DAYS"    envDefault:"100"`
	LoadConcurrency int           `env:"ANALYTICS_LOAD_CONCURRENCY"  envDefault:"16"`
	RequestTimeout  time.Duration `env:"ANALYTICS_REQUEST_TIMEOUT"   envDefault:"10s"`

	AllowedOrigin string `env:"FE_ORIGIN" envDefault:"*"`

	Auth       AuthConfig       `envPrefix:""`
	RateLimit  RateLimitConfig  `envPrefix:"INGEST_RATE_LIMIT_"`
	Redis      RedisConfig      `envPrefix:"REDIS_"`
	ClickHouse ClickHouseConfig `envPrefix:"CLICKHOUSE_"`

	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"analytics.db"`
}

type AuthConfig struct {
	// ReadAuth guards the query endpoint with a token or API key.
	ReadAuth   bool          `env:"ANALYTICS_READ_AUTH"     envDefault:"false"`
	JWTSecret  string        `env:"JWT_SECRET_KEY"`
	APIKeyHash string        `env:"ANALYTICS_API_KEY_HASH"`
	TokenTTL   time.Duration `env:"ANALYTICS_TOKEN_TTL"     envDefault:"1h"`
}

type RateLimitConfig struct {
	// RPS of zero turns ingest rate limiting off.
	RPS   float64 `env:"RPS"   envDefault:"0"`
	Burst int     `env:"BURST" envDefault:"20"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type ClickHouseConfig struct {
	Host       string `env:"HOST"`
	NativePort int    `env:"NATIVE_PORT" envDefault:"9000"`
	DBName     string `env:"DB_NAME"`
	Username   string `env:"USERNAME"`
	Password   string `env:"PASSWORD"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory, StoreRedis, StoreClickHouse, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("unsupported ANALYTICS_STORE %q", c.StoreBackend)
	}
	if c.DefaultDays < 0 || c.RetentionDays <= 0 {
		return fmt.Errorf("ANALYTICS_DEFAULT_DAYS must be >= 0 and ANALYTICS_RETENTION_DAYS > 0")
	}
	if c.Auth.ReadAuth && c.Auth.JWTSecret == "" && c.Auth.APIKeyHash == "" {
		return fmt.Errorf("ANALYTICS_READ_AUTH needs JWT_SECRET_KEY or ANALYTICS_API_KEY_HASH")
	}
	return nil
}
