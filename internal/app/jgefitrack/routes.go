// Package jgefitrack предоставляет маршруты для основного приложения.
package jgefitrack

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jgefitrack/backend/internal/http/handlers/access/check"
	"github.com/jgefitrack/backend/internal/http/handlers/health"
	subactive "github.com/jgefitrack/backend/internal/http/handlers/subscription/active"
	subcreate "github.com/jgefitrack/backend/internal/http/handlers/subscription/create"
	sublist "github.com/jgefitrack/backend/internal/http/handlers/subscription/list"
	subremove "github.com/jgefitrack/backend/internal/http/handlers/subscription/remove"
	subupdate "github.com/jgefitrack/backend/internal/http/handlers/subscription/update"
	"github.com/jgefitrack/backend/internal/http/handlers/tenant/extendtrial"
	tenantlist "github.com/jgefitrack/backend/internal/http/handlers/tenant/list"
	"github.com/jgefitrack/backend/internal/http/handlers/tenant/register"
	"github.com/jgefitrack/backend/internal/http/handlers/tenant/stats"
	"github.com/jgefitrack/backend/internal/http/handlers/tenant/toggle"
	"github.com/jgefitrack/backend/internal/http/middlewarectx"
	libjwt "github.com/jgefitrack/backend/internal/lib/jwt"
	accessservice "github.com/jgefitrack/backend/internal/services/access"
	subservice "github.com/jgefitrack/backend/internal/services/subscription"
	tenantservice "github.com/jgefitrack/backend/internal/services/tenant"
	"github.com/jgefitrack/backend/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, db *repository.Storage,
	jwtMaker libjwt.Maker, accessSvc *accessservice.Service,
	subscriptionSvc *subservice.Service, tenantSvc *tenantservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			// Проверка доступа текущего профессора
			r.Get("/acceso", check.New(logger, accessSvc).ServeHTTP)

			// Административная консоль
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))

				r.Post("/profesores", register.New(logger, tenantSvc).ServeHTTP)
				r.Get("/profesores", tenantlist.New(logger, tenantSvc).All)
				r.Get("/profesores/stats", stats.New(logger, tenantSvc).ServeHTTP)
				r.Get("/profesores/{id}", tenantlist.New(logger, tenantSvc).ByID)
				r.Patch("/profesores/{id}/activo", toggle.New(logger, tenantSvc).ServeHTTP)
				r.Post("/profesores/{id}/prueba", extendtrial.New(logger, tenantSvc).ServeHTTP)

				r.Post("/pagos", subcreate.New(logger, subscriptionSvc).ServeHTTP)
				r.Put("/pagos/{id}", subupdate.New(logger, subscriptionSvc).ServeHTTP)
				r.Delete("/pagos/{id}", subremove.New(logger, subscriptionSvc).ServeHTTP)
				r.Get("/pagos", sublist.New(logger, subscriptionSvc).All)
				r.Get("/profesores/{id}/pagos", sublist.New(logger, subscriptionSvc).ByTenant)
				r.Get("/profesores/{id}/pago-activo", subactive.New(logger, subscriptionSvc).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
}
