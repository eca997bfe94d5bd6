package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port       string `env:"PORT,        default=3001"`
	Host       string `env:"HOST,        default=0.0.0.0"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	LogPretty  bool   `env:"LOG_PRETTY,  default=false"`
	APIVersion string `env:"API_VERSION, default=v1"`

	HTTP       HTTPConfig
	Pagination PaginationConfig
	Auth       AuthConfig
	Store      StoreConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	Features   FeatureConfig
}

type HTTPConfig struct {
	CORSOrigin        string        `env:"CORS_ORIGIN,         default=http://localhost:3000"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT,     default=30s"`
	BodyLimit         string        `env:"BODY_LIMIT,          default=10M"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS, default=100"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW,   default=15m"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,    default=10s"`
}

type PaginationConfig struct {
	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE, default=10"`
	MaxPageSize     int `env:"MAX_PAGE_SIZE,     default=100"`
}

type AuthConfig struct {
	AccessSecret        string        `env:"JWT_ACCESS_SECRET,          default=dev-access-secret"`
	RefreshSecret       string        `env:"JWT_REFRESH_SECRET,         default=dev-refresh-secret"`
	AccessTTL           time.Duration `env:"JWT_ACCESS_TTL,             default=15m"`
	RefreshTTL          time.Duration `env:"JWT_REFRESH_TTL,            default=168h"`
	AllowForcedResult   bool          `env:"AUTH_ALLOW_FORCED_RESULT,   default=true"`
	RequireForMutations bool          `env:"AUTH_REQUIRE_FOR_MUTATIONS, default=false"`
}

type StoreConfig struct {
	// Driver is "memory" or "mongo".
	Driver string `env:"STORE_DRIVER, default=memory"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=user_management"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=20"`
}

type RedisConfig struct {
	// Addr empty disables Redis; the result cache then lives in process.
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,  default=0"`
	CacheTTL time.Duration `env:"CACHE_TTL, default=30s"`
}

type FeatureConfig struct {
	Metrics bool `env:"METRICS_ENABLED, default=true"`
	Swagger bool `env:"SWAGGER_ENABLED, default=true"`
}

// Address is the listen address.
func (c *Config) Address() string {
	return c.Host + ":" + c.Port
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through the given lookuper and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory", "mongo":
	default:
		return fmt.Errorf("STORE_DRIVER must be memory or mongo, got %q", c.Store.Driver)
	}
	if c.Pagination.DefaultPageSize < 1 || c.Pagination.MaxPageSize < c.Pagination.DefaultPageSize {
		return fmt.Errorf("invalid page sizes: default %d, max %d", c.Pagination.DefaultPageSize, c.Pagination.MaxPageSize)
	}
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.HTTP.RateLimitRequests < 1 || c.HTTP.RateLimitWindow <= 0 {
		return fmt.Errorf("invalid rate limit %d per %s", c.HTTP.RateLimitRequests, c.HTTP.RateLimitWindow)
	}
	return nil
}
