// Package totp реализует одноразовые пароли по RFC 6238 (HMAC-SHA1).
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPeriod длительность шага в секундах
	DefaultPeriod = 30
	// DefaultDigits количество цифр в коде
	DefaultDigits = 6
	// DefaultSkew количество соседних шагов, принимаемых при проверке
	DefaultSkew = 1

	// 160 бит, рекомендованная длина ключа для HMAC-SHA1
	secretBytes = 20
	maxDigits   = 8
)

// ErrInvalidSecret возвращается, если сохраненный секрет не декодируется из base32
var ErrInvalidSecret = errors.New("invalid totp secret")

var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Config параметры генерации и проверки кодов
type Config struct {
	Issuer string
	Period int
	Digits int
	Skew   int
}

// Engine генерирует секреты и проверяет коды
type Engine struct {
	cfg Config
}

// NewEngine создает Engine, подставляя значения по умолчанию для незаданных полей
func NewEngine(cfg Config) *Engine {
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.Digits <= 0 || cfg.Digits > maxDigits {
		cfg.Digits = DefaultDigits
	}
	if cfg.Skew <= 0 {
		cfg.Skew = DefaultSkew
	}
	return &Engine{cfg: cfg}
}

// Digits возвращает длину кода
func (e *Engine) Digits() int {
	return e.cfg.Digits
}

// GenerateSecret возвращает новый случайный секрет в base32 без padding
func (e *Engine) GenerateSecret() (string, error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return secretEncoding.EncodeToString(raw), nil
}

// ProvisionURI строит otpauth:// URI для QR-кода в приложении-аутентификаторе
func (e *Engine) ProvisionURI(secret, account string) string {
	label := url.PathEscape(e.cfg.Issuer + ":" + account)

	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", e.cfg.Issuer)
	v.Set("algorithm", "SHA1")
	v.Set("digits", strconv.Itoa(e.cfg.Digits))
	v.Set("period", strconv.Itoa(e.cfg.Period))

	return "otpauth://totp/" + label + "?" + v.Encode()
}

// Code вычисляет код для шага, содержащего момент t
func (e *Engine) Code(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return hotp(key, t.Unix()/int64(e.cfg.Period), e.cfg.Digits), nil
}

// Verify проверяет код для шага now и cfg.Skew соседних шагов в обе стороны.
// Код неверной длины или с нецифровыми символами отклоняется без вычисления HMAC.
// Ошибка возвращается только для некорректного секрета.
func (e *Engine) Verify(secret, code string, now time.Time) (bool, error) {
	_, ok, err := e.Match(secret, code, now)
	return ok, err
}

// Match как Verify, но дополнительно возвращает номер совпавшего шага.
// Все шаги окна проверяются целиком, время ответа не зависит от позиции совпадения.
func (e *Engine) Match(secret, code string, now time.Time) (int64, bool, error) {
	code = strings.TrimSpace(code)
	if len(code) != e.cfg.Digits || !isNumeric(code) {
		return 0, false, nil
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return 0, false, err
	}

	counter := now.Unix() / int64(e.cfg.Period)
	var matchedCounter int64
	matched := 0
	for step := -e.cfg.Skew; step <= e.cfg.Skew; step++ {
		c := counter + int64(step)
		if c < 0 {
			continue
		}
		expected := hotp(key, c, e.cfg.Digits)
		eq := subtle.ConstantTimeCompare([]byte(expected), []byte(code))
		// первое совпадение фиксирует шаг
		take := eq & (matched ^ 1)
		matchedCounter = int64(subtle.ConstantTimeSelect(take, int(c), int(matchedCounter)))
		matched |= eq
	}

	if matched != 1 {
		return 0, false, nil
	}
	return matchedCounter, true, nil
}

func decodeSecret(secret string) ([]byte, error) {
	normalized := strings.ToUpper(strings.TrimRight(strings.TrimSpace(secret), "="))
	key, err := secretEncoding.DecodeString(normalized)
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidSecret
	}
	return key, nil
}

// hotp вычисляет HOTP (RFC 4226) с динамическим усечением
func hotp(key []byte, counter int64, digits int) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, key)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (uint32(sum[offset])&0x7f)<<24 |
		uint32(sum[offset+1])<<16 |
		uint32(sum[offset+2])<<8 |
		uint32(sum[offset+3])

	mod := uint32(1)
	for i := 0; i < digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", digits, bin%mod)
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
