package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	HTTP      HTTPConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Uploads   UploadsConfig
	Mirror    MirrorConfig
	Analytics AnalyticsConfig
}

type AuthConfig struct {
	JWTSecret    string        `env:"JWT_SECRET, required"`
	JWTTTL       time.Duration `env:"JWT_TTL,        default=168h"`
	CookieName   string        `env:"SESSION_COOKIE, default=token"`
	CookieSecure bool          `env:"COOKIE_SECURE,  default=false"`
}

type HTTPConfig struct {
	CORSOrigins []string `env:"CORS_ORIGINS,    default=http://localhost:5173"`
	AuthRate    float64  `env:"RATE_LIMIT_AUTH, default=5"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=exhibit_hub"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type UploadsConfig struct {
	Dir     string `env:"UPLOADS_DIR,      default=uploads"`
	BaseURL string `env:"UPLOADS_BASE_URL, default=/uploads"`
}

type MirrorConfig struct {
	Async   bool `env:"MIRROR_ASYNC,   default=false"`
	Workers int  `env:"MIRROR_WORKERS, default=8"`
}

type AnalyticsConfig struct {
	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL, default=60s"`
}

// IsDevelopment reports whether the service runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Mirror.Workers < 1 {
		return nil, fmt.Errorf("load config: MIRROR_WORKERS must be at least 1, got %d", cfg.Mirror.Workers)
	}
	if cfg.Auth.JWTTTL <= 0 {
		return nil, fmt.Errorf("load config: JWT_TTL must be positive, got %s", cfg.Auth.JWTTTL)
	}
	return &cfg, nil
}
