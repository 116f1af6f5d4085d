package handlers

import (
	"context"

	"github.com/iudanet/gophauth/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity кладет данные из bearer токена в контекст запроса
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext извлекает данные пользователя, положенные AuthMiddleware
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}
