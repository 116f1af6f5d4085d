package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/gophauth/internal/models"
	"github.com/iudanet/gophauth/internal/server/service"
	"github.com/iudanet/gophauth/pkg/api"
)

// AuthService - операции регистрации и входа
type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	IssueToken(user *models.User) (string, time.Time, error)
}

// UserGetter загружает пользователя по ID
type UserGetter interface {
	Get(ctx context.Context, userID string) (*models.User, error)
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	responder
	auth  AuthService
	users UserGetter
	now   func() time.Time
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, auth AuthService, users UserGetter) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger},
		auth:      auth,
		users:     users,
		now:       time.Now,
	}
}

// Register обрабатывает POST /api/v1/auth/register и POST /api/v1/users
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.auth.Register(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			h.logger.WarnContext(ctx, "email already registered")
			h.sendError(w, "email already registered", http.StatusConflict)
			return
		}
		h.sendServiceError(ctx, w, err, "register")
		return
	}

	h.sendJSON(w, toUserResponse(user), http.StatusCreated)
}

// Login обрабатывает POST /api/v1/auth/login.
// Токен возвращается в заголовке Authorization, тело пустое (204).
// Неизвестный email и неверный пароль неразличимы снаружи.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		h.sendError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrUnauthorized) {
			h.logger.WarnContext(ctx, "login failed", slog.String("reason", err.Error()))
			w.Header().Set("WWW-Authenticate", "Bearer")
			h.sendError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.sendServiceError(ctx, w, err, "login")
		return
	}

	token, expiresAt, err := h.auth.IssueToken(user)
	if err != nil {
		h.sendServiceError(ctx, w, err, "issue token")
		return
	}

	h.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	w.Header().Set("Authorization", "Bearer "+token)
	w.Header().Set(api.HeaderExpiresIn, strconv.FormatInt(int64(expiresAt.Sub(h.now()).Seconds()), 10))
	w.WriteHeader(http.StatusNoContent)
}

// Me обрабатывает GET /api/v1/auth/me: данные берутся из токена, без обращения к БД
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}

	h.sendJSON(w, api.MeResponse{
		UserID:   identity.UserID,
		Email:    identity.Email,
		Username: identity.Username,
		Message:  "Successfully authenticated",
	}, http.StatusOK)
}

// Profile обрабатывает GET /api/v1/auth/profile: актуальная запись из БД
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), identity.UserID)
	if err != nil {
		h.sendServiceError(r.Context(), w, err, "get profile")
		return
	}

	h.sendJSON(w, toUserResponse(user), http.StatusOK)
}
