package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session   SessionConfig
	MarketAPI MarketAPIConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Audit     AuditConfig
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET, required"`
	TTL          time.Duration `env:"SESSION_TTL,    default=24h"`
	CookieName   string        `env:"SESSION_COOKIE, default=mp_session"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE, default=false"`
}

type MarketAPIConfig struct {
	BaseURL          string        `env:"MARKET_API_URL,              default=http://localhost:5000/api"`
	Timeout          time.Duration `env:"MARKET_API_TIMEOUT,          default=30s"`
	AnalyticsTimeout time.Duration `env:"MARKET_API_ANALYTICS_TIMEOUT, default=60s"`
	MaxRetryWait     time.Duration `env:"MARKET_API_MAX_RETRY_WAIT,   default=5s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketplace"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// IsDevelopment reports whether the service runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the environment using go-envconfig.
func Load() *Config {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
