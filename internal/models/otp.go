package models

import "time"

// OtpSecret представляет TOTP секрет пользователя.
// У пользователя может быть не больше одного секрета.
// Запись не изменяется: повторная привязка = удаление + создание.
type OtpSecret struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Secret    string    `json:"otp_key"` // base32 без padding
	UserID    string    `json:"user_id"`
}
