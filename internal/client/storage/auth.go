// Package storage описывает локальное хранилище сессии CLI клиента.
package storage

import (
	"context"
	"time"
)

// AuthStorage хранит текущую сессию пользователя на клиенте
type AuthStorage interface {
	// SaveAuth перезаписывает сохраненную сессию
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth возвращает ErrAuthNotFound, если сессии нет
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth удаляет сессию (logout)
	DeleteAuth(ctx context.Context) error
}

// AuthData - сессия, полученная при логине или OTP проверке
type AuthData struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // unix секунды, 0 - срок неизвестен
}

// Expired сообщает, истек ли токен к моменту now
func (a *AuthData) Expired(now time.Time) bool {
	if a.ExpiresAt == 0 {
		return false
	}
	return !now.Before(time.Unix(a.ExpiresAt, 0))
}
