package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/iudanet/gophauth/internal/models"
	"github.com/iudanet/gophauth/internal/server/service"
	"github.com/iudanet/gophauth/pkg/api"
)

// UserService - операции над учетными записями
type UserService interface {
	Get(ctx context.Context, userID string) (*models.User, error)
	List(ctx context.Context, skip, limit int) ([]*models.User, error)
	Update(ctx context.Context, userID string, upd service.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, userID string) error
}

// UserHandler обрабатывает /api/v1/users
type UserHandler struct {
	responder
	users UserService
}

// NewUserHandler создает новый handler для пользователей
func NewUserHandler(logger *slog.Logger, users UserService) *UserHandler {
	return &UserHandler{
		responder: responder{logger: logger},
		users:     users,
	}
}

// List обрабатывает GET /api/v1/users?skip=&limit=
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip")
	if err != nil {
		h.sendError(w, "skip must be an integer", http.StatusBadRequest)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.sendError(w, "limit must be an integer", http.StatusBadRequest)
		return
	}

	users, err := h.users.List(r.Context(), skip, limit)
	if err != nil {
		h.sendServiceError(r.Context(), w, err, "list users")
		return
	}

	resp := make([]api.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}

	h.sendJSON(w, resp, http.StatusOK)
}

// Get обрабатывает GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		h.sendServiceError(r.Context(), w, err, "get user")
		return
	}

	h.sendJSON(w, toUserResponse(user), http.StatusOK)
}

// Update обрабатывает PATCH /api/v1/users/{id}. Изменять можно только себя.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r, "id")
	if !ok || !h.requireOwner(w, r, userID) {
		return
	}

	var req api.UpdateUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Update(r.Context(), userID, service.UserUpdate{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.sendServiceError(r.Context(), w, err, "update user")
		return
	}

	h.sendJSON(w, toUserResponse(user), http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/users/{id}. Удалить можно только себя.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r, "id")
	if !ok || !h.requireOwner(w, r, userID) {
		return
	}

	if err := h.users.Delete(r.Context(), userID); err != nil {
		h.sendServiceError(r.Context(), w, err, "delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathUserID извлекает UUID из path parameter (Go 1.22+)
func (h responder) pathUserID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.sendError(w, "invalid user id", http.StatusBadRequest)
		return "", false
	}
	return id.String(), true
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
