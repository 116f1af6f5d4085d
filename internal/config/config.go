// Package config загружает настройки сервера: сначала переменные окружения
// (со значениями по умолчанию), затем флаги командной строки поверх них.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// MinJWTSecretLen минимальная длина ключа HS256 в байтах
	MinJWTSecretLen = 32
)

// Config holds runtime settings for the server
type Config struct {
	HTTPAddr         string        `env:"HTTP_ADDR"        envDefault:":8080"`
	DatabaseDriver   string        `env:"DATABASE_DRIVER"  envDefault:"sqlite"`
	DatabaseDSN      string        `env:"DATABASE_DSN"     envDefault:"gophauth.db"`
	RedisAddr        string        `env:"REDIS_ADDR"       envDefault:"localhost:6379"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	JWTSecret        string        `env:"JWT_SECRET"`
	OTPIssuer        string        `env:"OTP_ISSUER"       envDefault:"gophauth"`
	LogLevel         string        `env:"LOG_LEVEL"        envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT"       envDefault:"json"`
	RedisDB          int           `env:"REDIS_DB"         envDefault:"0"`
	RedisTimeout     time.Duration `env:"REDIS_TIMEOUT"    envDefault:"2s"`
	JWTTTL           time.Duration `env:"JWT_TTL"          envDefault:"24h"`
	BcryptCost       int           `env:"BCRYPT_COST"      envDefault:"10"`
	OTPMaxAttempts   int           `env:"OTP_MAX_ATTEMPTS" envDefault:"5"`
	OTPWindow        time.Duration `env:"OTP_ATTEMPT_WINDOW" envDefault:"1m"`
	RateLimit        int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateLimitWindow  time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	AuthRateLimit    int           `env:"AUTH_RATE_LIMIT_REQUESTS" envDefault:"10"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindow      time.Duration `env:"LOGIN_ATTEMPT_WINDOW" envDefault:"15m"`
	TrustProxy       bool          `env:"TRUST_PROXY"      envDefault:"false"`
	ShowVersion      bool
}

// Load читает окружение процесса и args (без имени программы)
func Load(args []string) (*Config, error) {
	return load(args, env.Options{})
}

// LoadFrom читает переменные из environ вместо окружения процесса
func LoadFrom(args []string, environ map[string]string) (*Config, error) {
	return load(args, env.Options{Environment: environ})
}

func load(args []string, opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}

	if cfg.ShowVersion {
		return cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseFlags перекрывает значения из окружения явно заданными флагами
func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("gophauth-server", flag.ContinueOnError)

	fs.BoolVar(&c.ShowVersion, "version", false, "Show version information")
	fs.StringVar(&c.HTTPAddr, "a", c.HTTPAddr, "HTTP listen address")
	fs.StringVar(&c.DatabaseDriver, "driver", c.DatabaseDriver, "database driver (sqlite|postgres)")
	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN or SQLite file path")
	fs.StringVar(&c.RedisAddr, "r", c.RedisAddr, "Redis address")
	fs.StringVar(&c.JWTSecret, "s", c.JWTSecret, "JWT HMAC secret key")
	fs.DurationVar(&c.JWTTTL, "t", c.JWTTTL, "access token lifetime")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format (json|text)")
	fs.BoolVar(&c.TrustProxy, "trust-proxy", c.TrustProxy, "take client IP from X-Forwarded-For/X-Real-IP")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	return nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}

	if c.DatabaseDSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	if len(c.JWTSecret) < MinJWTSecretLen {
		return fmt.Errorf("JWT secret must be at least %d bytes", MinJWTSecretLen)
	}

	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT TTL must be positive, got %s", c.JWTTTL)
	}

	if c.OTPMaxAttempts > 0 && c.OTPWindow <= 0 {
		return fmt.Errorf("OTP attempt window must be positive when attempts are limited")
	}

	if c.LoginMaxAttempts > 0 && c.LoginWindow <= 0 {
		return fmt.Errorf("login attempt window must be positive when attempts are limited")
	}

	if c.RateLimit > 0 && c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window must be positive")
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format %q", c.LogFormat)
	}

	return nil
}
