package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/gophauth/internal/models"
	"github.com/iudanet/gophauth/internal/server/jwt"
	"github.com/iudanet/gophauth/internal/server/storage"
	"github.com/iudanet/gophauth/internal/server/totp"
)

// AttemptCounter ограничивает число попыток проверки кода
type AttemptCounter interface {
	Allow(ctx context.Context, id string) bool
	Reset(ctx context.Context, id string)
}

// UsedCodes отмечает шаги TOTP, код которых уже был принят
type UsedCodes interface {
	MarkUsed(ctx context.Context, userID string, counter int64) bool
}

// Enrollment - результат привязки TOTP
type Enrollment struct {
	Secret *models.OtpSecret
	URI    string
}

// Verification - результат проверки кода.
// AccessToken заполняется только при Success.
type Verification struct {
	ExpiresAt   time.Time
	AccessToken string
	Success     bool
}

// OtpService управляет TOTP секретами пользователей
type OtpService struct {
	logger   *slog.Logger
	users    storage.UserStorage
	secrets  storage.OtpStorage
	engine   *totp.Engine
	attempts AttemptCounter
	tokens   *jwt.Service
	used     UsedCodes
	now      func() time.Time
}

// OtpOption настраивает OtpService
type OtpOption func(*OtpService)

// WithOtpClock подменяет источник времени
func WithOtpClock(now func() time.Time) OtpOption {
	return func(s *OtpService) {
		s.now = now
	}
}

// WithUsedCodes запрещает повторное использование кода в пределах окна
func WithUsedCodes(used UsedCodes) OtpOption {
	return func(s *OtpService) {
		s.used = used
	}
}

// NewOtpService создает OtpService. attempts может быть nil.
func NewOtpService(
	logger *slog.Logger,
	users storage.UserStorage,
	secrets storage.OtpStorage,
	engine *totp.Engine,
	attempts AttemptCounter,
	tokens *jwt.Service,
	opts ...OtpOption,
) *OtpService {
	s := &OtpService{
		logger:   logger,
		users:    users,
		secrets:  secrets,
		engine:   engine,
		attempts: attempts,
		tokens:   tokens,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Digits - длина кода, который ожидает движок
func (s *OtpService) Digits() int {
	return s.engine.Digits()
}

// Enroll генерирует и сохраняет секрет.
// ErrNotFound - пользователя нет, ErrConflict - секрет уже есть.
func (s *OtpService) Enroll(ctx context.Context, userID string) (*Enrollment, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	value, err := s.engine.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	secret := &models.OtpSecret{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Secret:    value,
		CreatedAt: s.now().UTC(),
	}

	if err := s.secrets.CreateOtpSecret(ctx, secret); err != nil {
		switch {
		case errors.Is(err, storage.ErrOtpSecretAlreadyExists):
			return nil, fmt.Errorf("otp already enrolled: %w", ErrConflict)
		case errors.Is(err, storage.ErrUserNotFound):
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		default:
			return nil, fmt.Errorf("create otp secret: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "otp enrolled", slog.String("user_id", user.ID))

	return &Enrollment{
		Secret: secret,
		URI:    s.engine.ProvisionURI(secret.Secret, user.Email),
	}, nil
}

// Verify проверяет код по сохраненному секрету и при успехе выпускает токен.
// Отсутствие секрета - это неуспех, а не ошибка.
func (s *OtpService) Verify(ctx context.Context, userID, code string) (*Verification, error) {
	if s.attempts != nil && !s.attempts.Allow(ctx, userID) {
		return nil, ErrRateLimited
	}

	secret, err := s.secrets.GetOtpSecretByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrOtpSecretNotFound) {
			return &Verification{}, nil
		}
		return nil, fmt.Errorf("get otp secret: %w", err)
	}

	counter, ok, err := s.engine.Match(secret.Secret, code, s.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "stored otp secret is malformed",
			slog.String("user_id", userID), slog.Any("error", err))
		return &Verification{}, nil
	}
	if !ok {
		return &Verification{}, nil
	}

	if s.used != nil && !s.used.MarkUsed(ctx, userID, counter) {
		s.logger.WarnContext(ctx, "otp code reused", slog.String("user_id", userID))
		return &Verification{}, nil
	}

	if s.attempts != nil {
		s.attempts.Reset(ctx, userID)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.Username, 0)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &Verification{
		Success:     true,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// Disable удаляет секрет и сообщает, существовал ли он
func (s *OtpService) Disable(ctx context.Context, userID string) (bool, error) {
	deleted, err := s.secrets.DeleteOtpSecretByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("delete otp secret: %w", err)
	}

	if deleted {
		s.logger.InfoContext(ctx, "otp disabled", slog.String("user_id", userID))
	}
	return deleted, nil
}

// Get возвращает сохраненный секрет пользователя вместе с provisioning URI
func (s *OtpService) Get(ctx context.Context, userID string) (*Enrollment, error) {
	secret, err := s.secrets.GetOtpSecretByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrOtpSecretNotFound) {
			return nil, fmt.Errorf("otp secret: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("get otp secret: %w", err)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	return &Enrollment{
		Secret: secret,
		URI:    s.engine.ProvisionURI(secret.Secret, user.Email),
	}, nil
}
