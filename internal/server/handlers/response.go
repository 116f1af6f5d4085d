package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/gophauth/internal/models"
	"github.com/iudanet/gophauth/internal/server/service"
	"github.com/iudanet/gophauth/pkg/api"
)

// responder - общие для всех handler'ов методы формирования ответа
type responder struct {
	logger *slog.Logger
}

// sendJSON отправляет JSON ответ
func (h responder) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h responder) sendError(w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	h.sendJSON(w, resp, statusCode)
}

// sendServiceError переводит доменную ошибку в HTTP статус.
// Неизвестные ошибки логируются и отдаются как 500 без деталей.
func (h responder) sendServiceError(ctx context.Context, w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		h.sendError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNotFound):
		h.sendError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrConflict):
		h.sendError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrUnauthorized):
		h.sendError(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, service.ErrRateLimited):
		h.sendError(w, "too many attempts, please try again later", http.StatusTooManyRequests)
	default:
		h.logger.ErrorContext(ctx, op+" failed", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
	}
}

// decodeJSON читает тело запроса, неизвестные поля запрещены
func (h responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request body", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// requireIdentity возвращает identity из контекста; без нее отвечает 401
func (h responder) requireIdentity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		h.sendError(w, "missing bearer token", http.StatusUnauthorized)
		return models.Identity{}, false
	}
	return identity, true
}

// requireOwner проверяет, что субъект токена совпадает с userID
func (h responder) requireOwner(w http.ResponseWriter, r *http.Request, userID string) bool {
	identity, ok := h.requireIdentity(w, r)
	if !ok {
		return false
	}
	if identity.UserID != userID {
		h.logger.WarnContext(r.Context(), "access to another user's resource denied",
			slog.String("user_id", identity.UserID))
		h.sendError(w, "not allowed to access this user", http.StatusForbidden)
		return false
	}
	return true
}

const maxBodyBytes = 1 << 20

func toUserResponse(u *models.User) api.UserResponse {
	return api.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
