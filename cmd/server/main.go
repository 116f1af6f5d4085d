package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/gophauth/internal/config"
	"github.com/iudanet/gophauth/internal/crypto"
	"github.com/iudanet/gophauth/internal/logging"
	"github.com/iudanet/gophauth/internal/server"
	"github.com/iudanet/gophauth/internal/server/cache"
	"github.com/iudanet/gophauth/internal/server/handlers"
	"github.com/iudanet/gophauth/internal/server/jwt"
	"github.com/iudanet/gophauth/internal/server/service"
	"github.com/iudanet/gophauth/internal/server/storage"
	"github.com/iudanet/gophauth/internal/server/storage/postgres"
	"github.com/iudanet/gophauth/internal/server/storage/sqlite"
	"github.com/iudanet/gophauth/internal/server/totp"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// store - хранилище пользователей и TOTP секретов
type store interface {
	storage.UserStorage
	storage.OtpStorage
	storage.Pinger
	Close() error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	if cfg.ShowVersion {
		printVersion()
		return nil
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	redisClient := cache.NewClient(cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Timeout:  cfg.RedisTimeout,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("failed to close redis client", slog.Any("error", err))
		}
	}()

	kv := cache.New(redisClient, logger)
	if !kv.Ping(ctx) {
		logger.Warn("redis is unavailable, session flags and OTP attempt limits are disabled until it recovers",
			slog.String("addr", cfg.RedisAddr))
	}

	hasher := crypto.NewPasswordHasher(cfg.BcryptCost)
	tokens := jwt.NewService([]byte(cfg.JWTSecret), cfg.JWTTTL)
	engine := totp.NewEngine(totp.Config{Issuer: cfg.OTPIssuer})
	attempts := cache.NewAttemptLimiter(kv, "otp_attempts", cfg.OTPMaxAttempts, cfg.OTPWindow)
	loginAttempts := cache.NewAttemptLimiter(kv, "login_attempts", cfg.LoginMaxAttempts, cfg.LoginWindow)
	usedCodes := cache.NewCodeGuard(kv, "otp_used", 3*totp.DefaultPeriod*time.Second)

	authSvc := service.NewAuthService(logger, db, hasher, kv, tokens, service.WithLoginAttempts(loginAttempts))
	userSvc := service.NewUserService(logger, db, hasher)
	otpSvc := service.NewOtpService(logger, db, db, engine, attempts, tokens, service.WithUsedCodes(usedCodes))

	srv := server.New(logger, server.Options{
		Addr:            cfg.HTTPAddr,
		RateLimit:       cfg.RateLimit,
		RateLimitWindow: cfg.RateLimitWindow,
		AuthRateLimit:   cfg.AuthRateLimit,
		ShutdownTimeout: cfg.ShutdownTimeout,
		TrustProxy:      cfg.TrustProxy,
	}, server.Handlers{
		Auth:   handlers.NewAuthHandler(logger, authSvc, userSvc),
		Users:  handlers.NewUserHandler(logger, userSvc),
		Otp:    handlers.NewOtpHandler(logger, otpSvc),
		Health: handlers.NewHealthHandler(logger, db, kv, Version),
	}, tokens)

	logger.Info("gophauth server starting",
		slog.String("version", Version),
		slog.String("driver", cfg.DatabaseDriver))

	if err := srv.Run(ctx); err != nil {
		return err
	}

	logger.Info("gophauth server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return s, nil
	default:
		s, err := sqlite.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return s, nil
	}
}

func printVersion() {
	fmt.Printf("gophauth server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
