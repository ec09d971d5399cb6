// Package list реализует HTTP-обработчики чтения аккаунтов профессоров.
package list

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

// Service описывает интерфейс бизнес-логики чтения аккаунтов.
type Service interface {
	Get(ctx context.Context, id int) (*models.Tenant, error)
	List(ctx context.Context) ([]*models.Tenant, error)
}

// Handler управляет HTTP-запросами на чтение аккаунтов.
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

// All возвращает всех профессоров для административной консоли.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tenant.list.All"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tenants, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list professors", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list professors"))
		return
	}

	render.JSON(w, r, response.OKWithData(tenants))
}

// ByID возвращает одного профессора.
func (h *Handler) ByID(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tenant.list.ByID"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		log.Error("invalid tenant id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid tenant id"))
		return
	}

	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrTenantNotFound) {
			log.Error("tenant not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("tenant not found"))
			return
		}
		log.Error("failed to read professor", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read professor"))
		return
	}

	render.JSON(w, r, response.OKWithData(t))
}
