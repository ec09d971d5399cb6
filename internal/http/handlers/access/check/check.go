// Package check реализует HTTP-обработчик проверки доступа.
//
// Вызывается слоем идентификации после успешной проверки учётных данных:
// идентификатор аккаунта берётся из контекста запроса, решение шлюза
// доступа возвращается в JSON вместе с применёнными коррекциями флагов.
package check

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/jgefitrack/backend/internal/http/middlewarectx"
	"github.com/jgefitrack/backend/internal/http/response"
	"github.com/jgefitrack/backend/internal/lib/sl"
	"github.com/jgefitrack/backend/internal/models"
	"github.com/jgefitrack/backend/internal/services/access"
)

// Service описывает интерфейс шлюза доступа.
type Service interface {
	Authorize(ctx context.Context, tenantID int) (*access.Decision, error)
}

// Handler обрабатывает запросы проверки доступа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.check"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tenantID, ok := r.Context().Value(middlewarectx.TenantID).(int)
	if !ok || tenantID == 0 {
		log.Error("tenant id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	decision, err := h.service.Authorize(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, models.ErrTenantNotFound) {
			log.Error("tenant not found", slog.Int("tenant_id", tenantID))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("tenant not found"))
			return
		}
		log.Error("failed to authorize", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check access"))
		return
	}

	if !decision.Allowed {
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error(decision.Reason.Error()))
		return
	}

	log.Info("access allowed", slog.Int("tenant_id", tenantID))
	render.JSON(w, r, response.OKWithData(decision))
}
