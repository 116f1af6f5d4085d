package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// UsernamePattern определяет допустимый формат username
// Только латинские буквы, цифры, нижнее подчеркивание, точка и дефис
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+$`)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 32
	// MaxEmailLen максимальная длина email (RFC 5321)
	MaxEmailLen = 254
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MaxPasswordLen - bcrypt учитывает только первые 72 байта
	MaxPasswordLen = 72
)

// NormalizeEmail приводит email к каноническому виду для хранения и поиска
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail проверяет, что email является одиночным адресом без display name
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email %q is not a valid address", email)
	}

	return nil
}

// ValidateUsername проверяет, что username соответствует требованиям
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, '_', '.' and '-'")
	}

	return nil
}

// ValidatePassword проверяет требования к паролю
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordLen)
	}

	return nil
}

// ValidateOtpCode проверяет, что код состоит ровно из digits цифр
func ValidateOtpCode(code string, digits int) error {
	if len(code) != digits {
		return fmt.Errorf("otp code must be exactly %d digits", digits)
	}

	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return fmt.Errorf("otp code must contain only digits")
		}
	}

	return nil
}
