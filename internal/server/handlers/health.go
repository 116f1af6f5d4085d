package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/gophauth/internal/server/storage"
	"github.com/iudanet/gophauth/pkg/api"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusDown     = "unavailable"

	healthTimeout = 2 * time.Second
)

// CachePinger проверяет доступность кэша, не возвращая ошибок
type CachePinger interface {
	Ping(ctx context.Context) bool
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	responder
	db      storage.Pinger
	cache   CachePinger
	version string
}

// NewHealthHandler создает новый handler для health check. cache может быть nil.
func NewHealthHandler(logger *slog.Logger, db storage.Pinger, cache CachePinger, version string) *HealthHandler {
	return &HealthHandler{
		responder: responder{logger: logger},
		db:        db,
		cache:     cache,
		version:   version,
	}
}

// Health обрабатывает GET /api/v1/health.
// Недоступная БД дает 503, недоступный кэш только помечает статус как degraded.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := api.HealthResponse{
		Status:   statusOK,
		Version:  h.version,
		Database: statusOK,
		Cache:    statusOK,
	}
	code := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "database health check failed", slog.Any("error", err))
		resp.Status = statusDown
		resp.Database = statusDown
		code = http.StatusServiceUnavailable
	}

	if h.cache == nil || !h.cache.Ping(ctx) {
		resp.Cache = statusDown
		if code == http.StatusOK {
			resp.Status = statusDegraded
		}
	}

	h.sendJSON(w, resp, code)
}
