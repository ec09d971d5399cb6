// Package reconciler содержит логику приложения плановой сверки доступа.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/jgefitrack/backend/internal/config"
	"github.com/jgefitrack/backend/internal/rabbitmq"
	reconcilerservice "github.com/jgefitrack/backend/internal/services/reconciler"
	subservice "github.com/jgefitrack/backend/internal/services/subscription"
	"github.com/jgefitrack/backend/internal/storage/repository"
)

// App представляет приложение плановой сверки.
type App struct {
	reconcilerService *reconcilerservice.Service
	interval          time.Duration
	conn              *amqp.Connection
	ch                *amqp.Channel
	logger            *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		err := db.CheckDatabaseReady(ctx)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения сверки. Подключение к RabbitMQ
// опционально: при пустом URL события деактиваций не публикуются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	var conn *amqp.Connection
	var ch *amqp.Channel
	var events subservice.Publisher

	if cfg.RabbitMQURL != "" {
		var err error
		conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
		}
		ch, err = rabbitmq.SetupChannel(conn, rabbitmq.GetLifecycleQueues())
		if err != nil {
			closeResources(nil, conn, logger)
			return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
		}
		events = rabbitmq.NewPublisher(ch)
	} else {
		logger.Warn("rabbitmq url is empty, lifecycle events are disabled")
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	reconcilerService := reconcilerservice.New(db, events, logger, nil)

	return &App{
		reconcilerService: reconcilerService,
		interval:          cfg.AccessPolicy.ReconcileInterval,
		conn:              conn,
		ch:                ch,
		logger:            logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает цикл сверки до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.reconcilerService.Start(ctx, a.interval)

	a.logger.Info("shutting down reconciler service")
	closeResources(a.ch, a.conn, a.logger)
	return nil
}
