package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// MinBcryptCost is the lowest bcrypt work factor the service accepts.
const MinBcryptCost = 10

// MinSecretLen is the minimum length in bytes of the token signing secret.
const MinSecretLen = 32

// Supported values of DB_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// ErrMissingSecret is returned by Load when JWT_SECRET is unset.
var ErrMissingSecret = errors.New("missing required env var: JWT_SECRET")

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  It is built once at startup and never mutated
// afterwards; components receive the parts they need by value.
type Config struct {
	Env     string // application environment (e.g. "dev", "prod")
	Port    string // HTTP port to listen on
	AppName string // reported by /api/info
	Version string // reported by /api/info

	DB DBConfig

	JWTSecret    string // secret used to sign JWTs; never logged
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing

	EnableSwagger    bool     // expose /swagger.json and /api-docs
	CORSAllowOrigins []string // empty means no cross-origin access
	TrustProxy       bool     // take client IP from X-Forwarded-For
	BodyLimit        string   // echo BodyLimit size, e.g. "1M"

	Log        LogConfig
	RateLimit  RateLimitConfig
	LoginLimit LoginLimitConfig
	Cache      CacheConfig
	Redis      RedisConfig
	Queue      QueueConfig
}

// DBConfig selects the SQL driver and connection parameters.  For sqlite3
// Name is the database file path.
type DBConfig struct {
	Driver  string
	User    string
	Pass    string
	Host    string
	Port    string
	Name    string
	SSLMode string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

// AccessTTL returns the token lifetime as a duration.
func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMin) * time.Minute
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

// String renders the configuration for startup logs with secrets masked.
func (c Config) String() string {
	return fmt.Sprintf("env=%s port=%s db=%s://%s@%s:%s/%s jwt_secret=%s access_ttl=%dm bcrypt_cost=%d swagger=%t cors=%v",
		c.Env, c.Port, c.DB.Driver, c.DB.User, c.DB.Host, c.DB.Port, c.DB.Name,
		mask(c.JWTSecret), c.AccessTTLMin, c.BcryptCost, c.EnableSwagger, c.CORSAllowOrigins)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

// Load reads configuration values from environment variables and returns a
// Config.  Callers that want a .env file loaded should call godotenv first.
// Invalid or missing required values are reported as errors.
func Load() (Config, error) {
	cfg := Config{
		Env:     envStr("APP_ENV", "dev"),
		Port:    envStr("APP_PORT", "3000"),
		AppName: envStr("APP_NAME", "garage-api"),
		Version: envStr("APP_VERSION", "1.0.0"),
		DB: DBConfig{
			Driver:  strings.ToLower(envStr("DB_DRIVER", DriverMySQL)),
			User:    envStr("DB_USER", "root"),
			Pass:    os.Getenv("DB_PASS"),
			Host:    envStr("DB_HOST", "127.0.0.1"),
			Port:    os.Getenv("DB_PORT"),
			Name:    envStr("DB_NAME", "garage"),
			SSLMode: envStr("DB_SSLMODE", "disable"),
		},
		JWTSecret:        os.Getenv("JWT_SECRET"),
		EnableSwagger:    envBool("ENABLE_SWAGGER", false),
		CORSAllowOrigins: splitList(os.Getenv("CORS_ALLOW_ORIGINS")),
		TrustProxy:       envBool("TRUST_PROXY", false),
		BodyLimit:        envStr("BODY_LIMIT", "1M"),
		Log: LogConfig{
			Level:  envStr("LOG_LEVEL", "info"),
			Format: envStr("LOG_FORMAT", "json"),
		},
		RateLimit:  LoadRateLimitConfig(),
		LoginLimit: LoadLoginLimitConfig(),
		Cache:      LoadCacheConfig(),
		Redis:      LoadRedisConfig(),
		Queue:      LoadQueueConfig(),
	}

	var err error
	if cfg.AccessTTLMin, err = positiveInt("ACCESS_TOKEN_TTL_MIN", 60); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = positiveInt("BCRYPT_COST", MinBcryptCost); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost < MinBcryptCost {
		return Config{}, fmt.Errorf("BCRYPT_COST must be at least %d, got %d", MinBcryptCost, cfg.BcryptCost)
	}

	switch cfg.DB.Driver {
	case DriverMySQL:
		if cfg.DB.Port == "" {
			cfg.DB.Port = "3306"
		}
	case DriverPostgres:
		if cfg.DB.Port == "" {
			cfg.DB.Port = "5432"
		}
	case DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingSecret
	}
	if len(cfg.JWTSecret) < MinSecretLen {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLen)
	}
	return cfg, nil
}

// positiveInt reads an integer variable, falling back to def when unset.
// Unparseable or non-positive values are errors rather than silent defaults.
func positiveInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q", key, v)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
