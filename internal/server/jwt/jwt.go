package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iudanet/gophauth/internal/models"
)

// TokenTypeAccess значение claim "type" для access токенов
const TokenTypeAccess = "access_token"

var (
	// ErrInvalidToken - подпись, алгоритм или срок действия не прошли проверку.
	// Причина наружу не раскрывается.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidClaims - токен валиден, но subject отсутствует или некорректен
	ErrInvalidClaims = errors.New("invalid token claims")
)

// Claims represents JWT claims
type Claims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Type     string `json:"type"`
	gojwt.RegisteredClaims
}

// Service provides JWT token generation and validation
type Service struct {
	now    func() time.Time
	secret []byte
	ttl    time.Duration
}

// Option настраивает Service
type Option func(*Service)

// WithClock подменяет источник времени (используется в тестах)
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new JWT service
// secret should be a cryptographically secure random string
// ttl используется, когда Issue вызван без явного времени жизни
func NewService(secret []byte, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL возвращает время жизни токена по умолчанию
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue подписывает HS256 токен с iat = now и exp = now + ttl.
// ttl <= 0 заменяется значением по умолчанию.
// exp в токене хранится в целых секундах и округляется вверх; возвращается
// то же значение, что записано в claim.
func (s *Service) Issue(userID, email, username string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.now()
	expiresAt := ceilSecond(now.Add(ttl))

	claims := Claims{
		Email:    email,
		Username: username,
		Type:     TokenTypeAccess,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(expiresAt),
		},
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ceilSecond округляет t вверх до целой секунды
func ceilSecond(t time.Time) time.Time {
	if trunc := t.Truncate(time.Second); !trunc.Equal(t) {
		return trunc.Add(time.Second)
	}
	return t
}

// Validate проверяет подпись, алгоритм и срок действия и возвращает claims.
// Любая ошибка оборачивает ErrInvalidToken.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := gojwt.ParseWithClaims(tokenString, claims, func(token *gojwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
		gojwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != TokenTypeAccess {
		return nil, fmt.Errorf("%w: unexpected token type %q", ErrInvalidToken, claims.Type)
	}

	return claims, nil
}

// CurrentUser валидирует токен и извлекает identity.
// Отсутствующий или некорректный subject дает ErrInvalidClaims.
func (s *Service) CurrentUser(tokenString string) (models.Identity, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return models.Identity{}, err
	}

	if claims.Subject == "" {
		return models.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return models.Identity{}, fmt.Errorf("%w: malformed subject", ErrInvalidClaims)
	}

	return models.Identity{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Username: claims.Username,
	}, nil
}
