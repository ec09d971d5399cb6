// Package active реализует HTTP-обработчик чтения действующей подписки.
package active

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
)

// Service описывает интерфейс бизнес-логики чтения действующей подписки.
type Service interface {
	GetActive(ctx context.Context, tenantID int) (*models.ActiveSubscription, error)
}

// Handler управляет HTTP-запросами на чтение действующей подписки.
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
	const op = "handlers.subscription.active"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tenantID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || tenantID <= 0 {
		log.Error("invalid tenant id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid tenant id"))
		return
	}

	sub, err := h.service.GetActive(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, models.ErrTenantNotFound) {
			log.Error("tenant not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("tenant not found"))
			return
		}
		log.Error("failed to read active subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read active subscription"))
		return
	}

	render.JSON(w, r, response.OKWithData(sub))
}
