// Package subscription содержит бизнес-логику журнала оплат: создание,
// правку и удаление записей с обязательным вызовом синхронизатора статуса
// в той же транзакции, а также чтение определяющей записи с кешированием.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jgefitrack/backend/internal/lib/sl"
	"github.com/jgefitrack/backend/internal/models"
	"github.com/jgefitrack/backend/internal/services/sync"
	"github.com/jgefitrack/backend/internal/storage/repository"
)

const dateLayout = "2006-01-02"

// Cache описывает методы кеширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Publisher публикует события жизненного цикла для внешних потребителей.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service реализует операции журнала оплат.
type Service struct {
	db     *repository.Storage
	sync   *sync.Service
	cache  Cache
	events Publisher
	log    *slog.Logger
	now    func() time.Time
}

// New создаёт сервис журнала оплат. events может быть nil — тогда события
// не публикуются. now == nil означает time.Now.
func New(db *repository.Storage, syncService *sync.Service, cache Cache, events Publisher, log *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		db:     db,
		sync:   syncService,
		cache:  cache,
		events: events,
		log:    log,
		now:    now,
	}
}

func activeSubscriptionKey(tenantID int) string {
	return fmt.Sprintf("active-subscription:%d", tenantID)
}

func parsePeriod(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid fecha_inicio: %v", models.ErrValidation, err)
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid fecha_fin: %v", models.ErrValidation, err)
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: fecha_fin before fecha_inicio", models.ErrValidation)
	}
	return startDate, endDate, nil
}

// Create регистрирует оплату подписки и запускает синхронизатор для
// владеющего профессора в той же транзакции. Возвращает ID записи и
// применённые переходы флагов.
func (s *Service) Create(ctx context.Context, req models.DummySubscription) (int, *sync.Result, error) {
	startDate, endDate, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return 0, nil, err
	}

	entry := models.Subscription{
		TenantID:      req.TenantID,
		StartDate:     startDate,
		EndDate:       endDate,
		Status:        req.Status,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Receipt:       req.Receipt,
		Notes:         req.Notes,
	}

	var (
		newID int
		res   *sync.Result
	)
	err = s.db.WithTenantTx(ctx, func(q *repository.Queries) error {
		if _, err := q.GetTenantForUpdate(ctx, req.TenantID); err != nil {
			return err
		}
		id, err := q.CreateSubscription(ctx, entry)
		if err != nil {
			return err
		}
		newID = id
		after := entry
		after.ID = id
		res, err = s.sync.Apply(ctx, q, req.TenantID, nil, &after)
		return err
	})
	if err != nil {
		return 0, nil, err
	}

	s.log.Info("created subscription record",
		slog.Int("id", newID), slog.Int("tenant_id", req.TenantID))
	s.afterMutation(req.TenantID, res)
	return newID, res, nil
}

// Update правит запись оплаты и запускает синхронизатор с состояниями
// до и после правки.
func (s *Service) Update(ctx context.Context, id int, req models.DummySubscriptionUpdate) (*sync.Result, error) {
	startDate, endDate, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	var (
		tenantID int
		res      *sync.Result
	)
	err = s.db.WithTenantTx(ctx, func(q *repository.Queries) error {
		before, err := q.ReadSubscriptionForUpdate(ctx, id)
		if err != nil {
			return err
		}
		tenantID = before.TenantID

		after := *before
		after.StartDate = startDate
		after.EndDate = endDate
		after.Status = req.Status
		after.Amount = req.Amount
		after.PaymentMethod = req.PaymentMethod
		after.Receipt = req.Receipt
		after.Notes = req.Notes

		if err := q.UpdateSubscription(ctx, after); err != nil {
			return err
		}
		res, err = s.sync.Apply(ctx, q, tenantID, before, &after)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("updated subscription record",
		slog.Int("id", id), slog.Int("tenant_id", tenantID))
	s.afterMutation(tenantID, res)
	return res, nil
}

// Remove удаляет запись оплаты (административный возврат) и запускает
// синхронизатор с before и пустым after.
func (s *Service) Remove(ctx context.Context, id int) (*sync.Result, error) {
	var (
		tenantID int
		res      *sync.Result
	)
	err := s.db.WithTenantTx(ctx, func(q *repository.Queries) error {
		before, err := q.ReadSubscriptionForUpdate(ctx, id)
		if err != nil {
			return err
		}
		tenantID = before.TenantID

		if err := q.RemoveSubscription(ctx, id); err != nil {
			return err
		}
		res, err = s.sync.Apply(ctx, q, tenantID, before, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("removed subscription record",
		slog.Int("id", id), slog.Int("tenant_id", tenantID))
	s.afterMutation(tenantID, res)
	return res, nil
}

// GetActive возвращает определяющую запись профессора. Запись кешируется;
// признак активности всегда пересчитывается по датам на момент вызова,
// поэтому протухание кэша не влияет на ответ. Без записей в журнале
// возвращается {activa: false}.
func (s *Service) GetActive(ctx context.Context, tenantID int) (*models.ActiveSubscription, error) {
	cacheKey := activeSubscriptionKey(tenantID)
	now := s.now()

	var cached models.ActiveSubscription
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("key", cacheKey), sl.Err(err))
	}
	if found && cached.Record != nil {
		cached.Active = cached.Record.EffectiveStatus(now) == models.StatusActive
		if cached.Active {
			return &cached, nil
		}
		// Запись из кэша успела истечь, перечитываем журнал.
	}

	record, err := s.db.FindBestActive(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}
	result := &models.ActiveSubscription{
		Active: record != nil,
		Record: record,
	}
	if record != nil {
		if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
			s.log.Warn("failed to cache active subscription", slog.String("key", cacheKey), sl.Err(err))
		}
	}
	return result, nil
}

// List возвращает журнал оплат профессора, свежие записи первыми.
func (s *Service) List(ctx context.Context, tenantID int) ([]*models.Subscription, error) {
	return s.db.ListSubscriptions(ctx, tenantID)
}

// ListAll возвращает все записи оплат с пагинацией.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	return s.db.ListAllSubscriptions(ctx, limit, offset)
}

// afterMutation выполняет побочные эффекты после коммита: сбрасывает кэш
// определяющей записи и публикует события переходов. Ошибки здесь не
// фатальны и только логируются.
func (s *Service) afterMutation(tenantID int, res *sync.Result) {
	cacheKey := activeSubscriptionKey(tenantID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), sl.Err(err))
	}

	if s.events == nil || res == nil {
		return
	}
	if res.Reactivated {
		s.publish(tenantID, models.EventTenantReactivated, "reactivated")
	}
	if res.Deactivated {
		s.publish(tenantID, models.EventTenantDeactivated, "deactivated")
	}
}

func (s *Service) publish(tenantID int, eventType, routingKey string) {
	event := models.LifecycleEvent{
		EventID:    uuid.New().String(),
		TenantID:   tenantID,
		Type:       eventType,
		OccurredAt: s.now(),
	}
	if err := s.events.Publish(routingKey, event); err != nil {
		s.log.Error("failed to publish lifecycle event",
			slog.String("type", eventType), slog.Int("tenant_id", tenantID), sl.Err(err))
	}
}
