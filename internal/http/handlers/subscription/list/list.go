// Package list реализует HTTP-обработчики выборки записей оплат.
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

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Service описывает интерфейс бизнес-логики выборки оплат.
type Service interface {
	List(ctx context.Context, tenantID int) ([]*models.Subscription, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Subscription, error)
}

// Handler управляет HTTP-запросами на чтение оплат.
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

// ByTenant возвращает историю оплат одного профессора.
func (h *Handler) ByTenant(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list.ByTenant"
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

	subs, err := h.service.List(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, models.ErrTenantNotFound) {
			log.Error("tenant not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("tenant not found"))
			return
		}
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list subscriptions"))
		return
	}

	render.JSON(w, r, response.OKWithData(subs))
}

// All возвращает постраничный список оплат всех профессоров.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list.All"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > maxLimit {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid limit"))
			return
		}
		limit = v
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid offset"))
			return
		}
		offset = v
	}

	subs, err := h.service.ListAll(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list subscriptions"))
		return
	}

	render.JSON(w, r, response.OKWithData(subs))
}
