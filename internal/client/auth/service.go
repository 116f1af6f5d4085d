// Package auth - сессия CLI клиента: регистрация, вход, OTP и локальный токен.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/gophauth/internal/client/api"
	"github.com/iudanet/gophauth/internal/client/storage"
	"github.com/iudanet/gophauth/internal/validation"
	pkgapi "github.com/iudanet/gophauth/pkg/api"
)

var (
	// ErrNotAuthenticated - локальной сессии нет
	ErrNotAuthenticated = errors.New("not authenticated, run 'gophauth login' first")

	// ErrSessionExpired - токен сессии истек
	ErrSessionExpired = errors.New("session expired, run 'gophauth login' again")
)

// API - запросы к серверу, нужные сервису
type API interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.UserResponse, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*api.LoginResult, error)
	Me(ctx context.Context, token string) (*pkgapi.MeResponse, error)
	VerifyOtp(ctx context.Context, req pkgapi.OtpVerifyRequest) (*pkgapi.OtpVerifyResponse, error)
}

// Service управляет сессией пользователя на клиенте
type Service struct {
	api   API
	store storage.AuthStorage
	now   func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(apiClient API, store storage.AuthStorage) *Service {
	return &Service{
		api:   apiClient,
		store: store,
		now:   time.Now,
	}
}

// Register проверяет данные локально и регистрирует пользователя
func (s *Service) Register(ctx context.Context, email, username, password string) (*pkgapi.UserResponse, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	user, err := s.api.Register(ctx, pkgapi.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return user, nil
}

// Login получает токен, узнает identity и сохраняет сессию
func (s *Service) Login(ctx context.Context, email, password string) (*storage.AuthData, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	res, err := s.api.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return s.saveSession(ctx, res.AccessToken, res.ExpiresIn)
}

// VerifyOtp проверяет код; при успехе сохраняет выданный сервером токен
func (s *Service) VerifyOtp(ctx context.Context, userID, code string) (bool, error) {
	resp, err := s.api.VerifyOtp(ctx, pkgapi.OtpVerifyRequest{UserID: userID, OtpCode: code})
	if err != nil {
		return false, fmt.Errorf("otp verification failed: %w", err)
	}
	if !resp.Success || resp.AccessToken == "" {
		return false, nil
	}

	if _, err := s.saveSession(ctx, resp.AccessToken, resp.ExpiresIn); err != nil {
		return true, err
	}
	return true, nil
}

// Logout удаляет локальную сессию. Сервер токены не отзывает.
func (s *Service) Logout(ctx context.Context) error {
	err := s.store.DeleteAuth(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		return ErrNotAuthenticated
	}
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Session возвращает сохраненную сессию, даже истекшую
func (s *Service) Session(ctx context.Context) (*storage.AuthData, error) {
	auth, err := s.store.GetAuth(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return auth, nil
}

// Token возвращает действующий токен сессии
func (s *Service) Token(ctx context.Context) (string, error) {
	auth, err := s.Session(ctx)
	if err != nil {
		return "", err
	}
	if auth.Expired(s.now()) {
		return "", ErrSessionExpired
	}
	return auth.AccessToken, nil
}

func (s *Service) saveSession(ctx context.Context, token string, expiresIn int64) (*storage.AuthData, error) {
	me, err := s.api.Me(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch identity: %w", err)
	}

	auth := &storage.AuthData{
		UserID:      me.UserID,
		Email:       me.Email,
		Username:    me.Username,
		AccessToken: token,
	}
	if expiresIn > 0 {
		auth.ExpiresAt = s.now().Add(time.Duration(expiresIn) * time.Second).Unix()
	}

	if err := s.store.SaveAuth(ctx, auth); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return auth, nil
}
