// Package jgefitrack собирает HTTP-приложение: хранилище, миграции, кэш,
// брокер событий, сервисы жизненного цикла доступа и маршруты.
package jgefitrack

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/jgefitrack/backend/internal/cache"
	"github.com/jgefitrack/backend/internal/config"
	libjwt "github.com/jgefitrack/backend/internal/lib/jwt"
	"github.com/jgefitrack/backend/internal/migrations"
	"github.com/jgefitrack/backend/internal/rabbitmq"
	accessservice "github.com/jgefitrack/backend/internal/services/access"
	subservice "github.com/jgefitrack/backend/internal/services/subscription"
	syncservice "github.com/jgefitrack/backend/internal/services/sync"
	tenantservice "github.com/jgefitrack/backend/internal/services/tenant"
	"github.com/jgefitrack/backend/internal/storage/repository"
)

// App — HTTP-приложение ядра жизненного цикла доступа.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	amqpConn *amqp.Connection
}

// New инициализирует все зависимости приложения. Подключение к RabbitMQ
// опционально: при пустом URL события переходов не публикуются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var amqpConn *amqp.Connection
	var events subservice.Publisher
	if cfg.RabbitMQURL != "" {
		amqpConn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(amqpConn, rabbitmq.GetLifecycleQueues())
		if err != nil {
			return nil, err
		}
		events = rabbitmq.NewPublisher(ch)
	} else {
		logger.Warn("rabbitmq url is empty, lifecycle events are disabled")
	}

	syncSvc := syncservice.New(logger, nil)
	accessSvc := accessservice.New(db, logger, nil)
	subscriptionSvc := subservice.New(db, syncSvc, cacheRedis, events, logger, nil)
	tenantSvc := tenantservice.New(db, logger, cfg.AccessPolicy.TrialDays, nil)

	jwtMaker := libjwt.NewMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, db, jwtMaker, accessSvc, subscriptionSvc, tenantSvc)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и мягко останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.amqpConn != nil {
			_ = a.amqpConn.Close()
		}
		a.db.DB.Close()
		return err
	}
}
