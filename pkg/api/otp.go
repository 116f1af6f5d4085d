package api

import "time"

// OtpGenerateRequest - запрос на привязку TOTP
type OtpGenerateRequest struct {
	UserID string `json:"user_id"`
}

// OtpSecretResponse - сохраненный секрет и URI для приложения-аутентификатора
type OtpSecretResponse struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	OtpKey    string    `json:"otp_key"` // base32 без padding
	UserID    string    `json:"user_id"`
	QRCodeURI string    `json:"qr_code_uri,omitempty"` // otpauth://totp/...
}

// OtpVerifyRequest - проверка одноразового кода
type OtpVerifyRequest struct {
	UserID  string `json:"user_id"`
	OtpCode string `json:"otp_code"`
}

// OtpVerifyResponse - результат проверки; токен выдается только при успехе
type OtpVerifyResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
	Success     bool   `json:"success"`
}

// OtpDeleteResponse - результат отключения TOTP
type OtpDeleteResponse struct {
	Success bool `json:"success"`
}
