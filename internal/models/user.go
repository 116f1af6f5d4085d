package models

import "time"

// User представляет учетную запись пользователя
type User struct {
	CreatedAt    time.Time `json:"created_at"`    // время создания
	UpdatedAt    time.Time `json:"updated_at"`    // время последнего обновления
	ID           string    `json:"id"`            // UUID пользователя
	Email        string    `json:"email"`         // уникальный email
	Username     string    `json:"username"`      // отображаемое имя
	PasswordHash string    `json:"-"`             // bcrypt хеш пароля, наружу не отдается
}

// Identity - данные пользователя, извлеченные из bearer токена
type Identity struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}
