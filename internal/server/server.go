// Package server собирает HTTP маршруты gophauth и управляет жизненным циклом http.Server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/gophauth/internal/server/handlers"
	"github.com/iudanet/gophauth/internal/server/middleware"
)

// Options - сетевые параметры и лимиты
type Options struct {
	Addr            string
	RateLimit       int
	RateLimitWindow time.Duration
	AuthRateLimit   int
	ShutdownTimeout time.Duration

	// TrustProxy - клиентский IP берется из X-Forwarded-For/X-Real-IP
	TrustProxy bool
}

// Handlers - набор обработчиков, которые монтирует роутер
type Handlers struct {
	Auth   *handlers.AuthHandler
	Users  *handlers.UserHandler
	Otp    *handlers.OtpHandler
	Health *handlers.HealthHandler
}

// Server - HTTP сервер API
type Server struct {
	logger   *slog.Logger
	http     *http.Server
	limiters []*middleware.RateLimiter
	opts     Options
}

// New создает сервер и регистрирует маршруты
func New(logger *slog.Logger, opts Options, h Handlers, tokens middleware.TokenValidator) *Server {
	s := &Server{
		logger: logger,
		opts:   opts,
	}

	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(h, tokens),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler возвращает корневой handler (используется в тестах)
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// limit оборачивает handler в per-IP limiter; rate <= 0 отключает ограничение
func (s *Server) limit(rate int) func(http.Handler) http.Handler {
	if rate <= 0 || s.opts.RateLimitWindow <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	rl := middleware.NewRateLimiter(rate, s.opts.RateLimitWindow, s.logger)
	s.limiters = append(s.limiters, rl)
	return middleware.RateLimitMiddleware(rl, s.logger, s.opts.TrustProxy)
}

func (s *Server) routes(h Handlers, tokens middleware.TokenValidator) http.Handler {
	mux := http.NewServeMux()

	authn := middleware.AuthMiddleware(s.logger, tokens)
	strict := s.limit(s.opts.AuthRateLimit)

	protected := func(fn http.HandlerFunc) http.Handler {
		return authn(fn)
	}

	mux.HandleFunc("GET /api/v1/health", h.Health.Health)

	mux.Handle("POST /api/v1/auth/register", strict(http.HandlerFunc(h.Auth.Register)))
	mux.Handle("POST /api/v1/auth/login", strict(http.HandlerFunc(h.Auth.Login)))
	mux.Handle("GET /api/v1/auth/me", protected(h.Auth.Me))
	mux.Handle("GET /api/v1/auth/profile", protected(h.Auth.Profile))

	mux.Handle("POST /api/v1/users", strict(http.HandlerFunc(h.Auth.Register)))
	mux.Handle("GET /api/v1/users", protected(h.Users.List))
	mux.Handle("GET /api/v1/users/{id}", protected(h.Users.Get))
	mux.Handle("PATCH /api/v1/users/{id}", protected(h.Users.Update))
	mux.Handle("DELETE /api/v1/users/{id}", protected(h.Users.Delete))

	mux.Handle("POST /api/v1/otp/generate", protected(h.Otp.Generate))
	mux.Handle("POST /api/v1/otp/verify", strict(http.HandlerFunc(h.Otp.Verify)))
	mux.Handle("GET /api/v1/otp/{user_id}", protected(h.Otp.Get))
	mux.Handle("DELETE /api/v1/otp/{user_id}", protected(h.Otp.Delete))

	// порядок: recovery внутри logging, чтобы паника логировалась как 500
	var root http.Handler = mux
	root = middleware.RecoveryMiddleware(s.logger)(root)
	root = s.limit(s.opts.RateLimit)(root)
	root = middleware.LoggingWithSkip(s.logger, []string{"/api/v1/health"})(root)

	return root
}

// Run слушает адрес до отмены ctx, затем выполняет graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	defer s.stopLimiters()

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "HTTP server listening", slog.String("addr", s.opts.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server", slog.Duration("timeout", s.opts.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func (s *Server) stopLimiters() {
	for _, rl := range s.limiters {
		rl.Stop()
	}
}

// Close освобождает фоновые ресурсы, если Run не вызывался
func (s *Server) Close() {
	s.stopLimiters()
}
