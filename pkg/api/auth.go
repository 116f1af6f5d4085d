// Package api описывает JSON контракт HTTP API сервера gophauth.
// Пакет используется и сервером, и CLI клиентом.
package api

import "time"

const (
	// TokenTypeBearer тип токена в ответах
	TokenTypeBearer = "bearer"

	// HeaderExpiresIn - время жизни выданного при логине токена в секундах
	HeaderExpiresIn = "X-Expires-In"
)

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Email    string `json:"email"`    // email, уникален без учета регистра
	Username string `json:"username"` // отображаемое имя
	Password string `json:"password"` // пароль в открытом виде, только по TLS
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse - публичное представление пользователя, без хеша пароля
type UserResponse struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
}

// UpdateUserRequest - частичное обновление, отсутствующие поля не меняются
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

// MeResponse - данные пользователя из bearer токена
type MeResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
