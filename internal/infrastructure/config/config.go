package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session storage drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Session SessionConfig
	Audit   AuditConfig

	Mongo MongoConfig
	Redis RedisConfig
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:8000"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=15s"`
}

type SessionConfig struct {
	Driver       string        `env:"SESSION_DRIVER,       default=memory"`
	TTL          time.Duration `env:"SESSION_TTL,          default=24h"`
	CookieName   string        `env:"CLIENT_COOKIE_NAME,   default=portal_client"`
	CookieSecure bool          `env:"CLIENT_COOKIE_SECURE, default=false"`
}

type AuditConfig struct {
	// Store is "log" or "mongo".
	Store   string `env:"AUDIT_STORE,   default=log"`
	Workers int    `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=consultant_portal"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,        default=0"`
	PoolSize int           `env:"REDIS_POOL_SIZE, default=10"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,   default=3s"`
}

// Production reports whether the portal runs in production.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// UsesMongo reports whether any component needs a MongoDB connection.
func (c *Config) UsesMongo() bool {
	return c.Session.Driver == DriverMongo || c.Audit.Store == DriverMongo
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	switch cfg.Session.Driver {
	case DriverMemory, DriverRedis, DriverMongo:
	default:
		return nil, fmt.Errorf("config: unknown SESSION_DRIVER %q", cfg.Session.Driver)
	}
	switch cfg.Audit.Store {
	case "log", DriverMongo:
	default:
		return nil, fmt.Errorf("config: unknown AUDIT_STORE %q", cfg.Audit.Store)
	}
	if cfg.Production() {
		cfg.Session.CookieSecure = true
	}
	return &cfg, nil
}
