package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/gophauth/internal/models"
	"github.com/iudanet/gophauth/internal/server/service"
	"github.com/iudanet/gophauth/internal/validation"
	"github.com/iudanet/gophauth/pkg/api"
)

// OtpService - операции над TOTP
type OtpService interface {
	Digits() int
	Enroll(ctx context.Context, userID string) (*service.Enrollment, error)
	Verify(ctx context.Context, userID, code string) (*service.Verification, error)
	Disable(ctx context.Context, userID string) (bool, error)
	Get(ctx context.Context, userID string) (*service.Enrollment, error)
}

// OtpHandler обрабатывает /api/v1/otp
type OtpHandler struct {
	responder
	otp OtpService
	now func() time.Time
}

// NewOtpHandler создает новый handler для TOTP
func NewOtpHandler(logger *slog.Logger, otp OtpService) *OtpHandler {
	return &OtpHandler{
		responder: responder{logger: logger},
		otp:       otp,
		now:       time.Now,
	}
}

// Generate обрабатывает POST /api/v1/otp/generate
func (h *OtpHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.OtpGenerateRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	userID, ok := h.parseUserID(w, req.UserID)
	if !ok || !h.requireOwner(w, r, userID) {
		return
	}

	enrollment, err := h.otp.Enroll(ctx, userID)
	if err != nil {
		// уже привязанный TOTP - ошибка запроса, а не конфликт ресурса
		if errors.Is(err, service.ErrConflict) {
			h.sendError(w, "otp already enrolled for this user", http.StatusBadRequest)
			return
		}
		h.sendServiceError(ctx, w, err, "enroll otp")
		return
	}

	resp := toOtpResponse(enrollment.Secret)
	resp.QRCodeURI = enrollment.URI
	h.sendJSON(w, resp, http.StatusCreated)
}

// Verify обрабатывает POST /api/v1/otp/verify. Bearer не требуется:
// это второй фактор, успешная проверка выдает новый токен.
func (h *OtpHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.OtpVerifyRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	userID, ok := h.parseUserID(w, req.UserID)
	if !ok {
		return
	}

	if err := validation.ValidateOtpCode(req.OtpCode, h.otp.Digits()); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.otp.Verify(ctx, userID, req.OtpCode)
	if err != nil {
		h.sendServiceError(ctx, w, err, "verify otp")
		return
	}

	if !res.Success {
		h.logger.WarnContext(ctx, "otp verification failed", slog.String("user_id", userID))
		h.sendJSON(w, api.OtpVerifyResponse{Message: "Invalid OTP code"}, http.StatusOK)
		return
	}

	h.sendJSON(w, api.OtpVerifyResponse{
		Success:     true,
		Message:     "OTP verified successfully",
		AccessToken: res.AccessToken,
		TokenType:   api.TokenTypeBearer,
		ExpiresIn:   int64(res.ExpiresAt.Sub(h.now()).Seconds()),
	}, http.StatusOK)
}

// Get обрабатывает GET /api/v1/otp/{user_id}
func (h *OtpHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r, "user_id")
	if !ok || !h.requireOwner(w, r, userID) {
		return
	}

	enrollment, err := h.otp.Get(r.Context(), userID)
	if err != nil {
		h.sendServiceError(r.Context(), w, err, "get otp")
		return
	}

	resp := toOtpResponse(enrollment.Secret)
	resp.QRCodeURI = enrollment.URI
	h.sendJSON(w, resp, http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/otp/{user_id}
func (h *OtpHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r, "user_id")
	if !ok || !h.requireOwner(w, r, userID) {
		return
	}

	deleted, err := h.otp.Disable(r.Context(), userID)
	if err != nil {
		h.sendServiceError(r.Context(), w, err, "disable otp")
		return
	}

	h.sendJSON(w, api.OtpDeleteResponse{Success: deleted}, http.StatusOK)
}

func (h *OtpHandler) parseUserID(w http.ResponseWriter, raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		h.sendError(w, "user_id must be a valid UUID", http.StatusBadRequest)
		return "", false
	}
	return id.String(), true
}

func toOtpResponse(s *models.OtpSecret) api.OtpSecretResponse {
	return api.OtpSecretResponse{
		ID:        s.ID,
		OtpKey:    s.Secret,
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
	}
}
