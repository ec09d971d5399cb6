// Package remove реализует HTTP-обработчик удаления записи оплаты.
//
// В ответе возвращается признак profesorDesactivado, чтобы клиент мог
// сразу показать предупреждение, если удаление лишило профессора доступа.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/jgefitrack/backend/internal/http/response"
	"github.com/jgefitrack/backend/internal/lib/sl"
	"github.com/jgefitrack/backend/internal/models"
	"github.com/jgefitrack/backend/internal/services/sync"
)

// Service описывает интерфейс бизнес-логики удаления записи оплаты.
type Service interface {
	Remove(ctx context.Context, id int) (*sync.Result, error)
}

// Handler управляет HTTP-запросами на удаление оплат.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		log.Error("invalid subscription id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid subscription id"))
		return
	}

	res, err := h.service.Remove(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			log.Error("subscription not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
		default:
			log.Error("failed to remove subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not remove subscription"))
		}
		return
	}

	log.Info("subscription record removed",
		slog.Int("id", id),
		slog.Bool("tenant_deactivated", res.Deactivated))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"profesorDesactivado": res.Deactivated,
	}))
}
