package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Capability CapabilityConfig
	Postgres   PostgresConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	Payment    PaymentConfig
	Booking    BookingConfig
	Bootstrap  BootstrapConfig
}

type CapabilityConfig struct {
	Secret string        `env:"CAPABILITY_SECRET"`
	TTL    time.Duration `env:"CAPABILITY_TTL, default=5m"`
}

type PostgresConfig struct {
	DSN          string        `env:"POSTGRES_DSN, default=postgres://localhost:5432/rentals?sslmode=disable"`
	QueryTimeout time.Duration `env:"POSTGRES_QUERY_TIMEOUT, default=5s"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=rental_platform"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=20"`
}

type PaymentConfig struct {
	StepDelay time.Duration `env:"PAYMENT_STEP_DELAY, default=1500ms"`
	Workers   int           `env:"PAYMENT_WORKERS,    default=4"`
}

type BookingConfig struct {
	DraftTTL           time.Duration `env:"DRAFT_TTL,            default=2h"`
	DefaultMonthlyRate float64       `env:"DEFAULT_MONTHLY_RATE, default=500000"`
	RPC                string        `env:"BOOKING_RPC,          default=create_tenant_booking"`
}

// BootstrapConfig seeds role grants at startup.
type BootstrapConfig struct {
	AdminEmails []string `env:"BOOTSTRAP_ADMIN_EMAILS"`
	TenantIDs   []string `env:"BOOTSTRAP_TENANT_IDS"`
}

// Development reports whether the service runs with developer defaults.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	if cfg.Capability.Secret == "" {
		cfg.Capability.Secret = cfg.JWTSecret
	}
	return &cfg, nil
}
