package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/gophauth/internal/crypto"
	"github.com/iudanet/gophauth/internal/models"
	"github.com/iudanet/gophauth/internal/server/cache"
	"github.com/iudanet/gophauth/internal/server/jwt"
	"github.com/iudanet/gophauth/internal/server/storage"
	"github.com/iudanet/gophauth/internal/validation"
)

// SessionFlagger записывает флаг сессии. Реализация не возвращает ошибок.
type SessionFlagger interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) bool
}

// AuthService регистрирует пользователей и проверяет учетные данные
type AuthService struct {
	logger   *slog.Logger
	users    storage.UserStorage
	hasher   *crypto.PasswordHasher
	sessions SessionFlagger
	tokens   *jwt.Service
	attempts AttemptCounter
	now      func() time.Time
}

// AuthOption настраивает AuthService
type AuthOption func(*AuthService)

// WithLoginAttempts ограничивает число попыток входа на email
func WithLoginAttempts(attempts AttemptCounter) AuthOption {
	return func(s *AuthService) {
		s.attempts = attempts
	}
}

// NewAuthService создает AuthService. sessions может быть nil.
func NewAuthService(
	logger *slog.Logger,
	users storage.UserStorage,
	hasher *crypto.PasswordHasher,
	sessions SessionFlagger,
	tokens *jwt.Service,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		logger:   logger,
		users:    users,
		hasher:   hasher,
		sessions: sessions,
		tokens:   tokens,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register создает пользователя. Уникальность email обеспечивает хранилище.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	email = validation.NormalizeEmail(email)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, invalid(err)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, invalid(err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, invalid(err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, fmt.Errorf("email %s: %w", email, ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username))

	return user, nil
}

// Login проверяет пару email/пароль.
// Возвращает ErrNotFound для неизвестного email, ErrUnauthorized при неверном пароле
// и ErrRateLimited, когда попытки для email исчерпаны.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = validation.NormalizeEmail(email)

	if s.attempts != nil && !s.attempts.Allow(ctx, email) {
		return nil, ErrRateLimited
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// выравниваем время ответа с веткой неверного пароля
			s.hasher.VerifyDummy(password)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrUnauthorized
	}

	if s.attempts != nil {
		s.attempts.Reset(ctx, email)
	}

	if s.sessions != nil && !s.sessions.Set(ctx, cache.SessionFlagKey(user.Email), true, 0) {
		s.logger.WarnContext(ctx, "session flag not stored", slog.String("user_id", user.ID))
	}

	return user, nil
}

// IssueToken выпускает access токен для пользователя
func (s *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.Username, 0)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return token, expiresAt, nil
}
