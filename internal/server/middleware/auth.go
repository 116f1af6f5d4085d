package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/gophauth/internal/models"
	"github.com/iudanet/gophauth/internal/server/handlers"
)

// TokenValidator извлекает identity из bearer токена
type TokenValidator interface {
	CurrentUser(token string) (models.Identity, error)
}

// BearerToken извлекает токен из заголовка "Authorization: Bearer <token>"
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// AuthMiddleware создает middleware для проверки JWT токена.
// При успехе identity доступна через handlers.IdentityFromContext.
func AuthMiddleware(logger *slog.Logger, tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := BearerToken(r)
			if !ok {
				logger.DebugContext(ctx, "missing or malformed Authorization header")
				unauthorized(w, "missing bearer token")
				return
			}

			identity, err := tokens.CurrentUser(token)
			if err != nil {
				logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
				unauthorized(w, "could not validate credentials")
				return
			}

			logger.DebugContext(ctx, "user authenticated", slog.String("user_id", identity.UserID))

			next.ServeHTTP(w, r.WithContext(handlers.WithIdentity(ctx, identity)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, message, http.StatusUnauthorized)
}
