// Package sync реализует синхронизатор статуса: побочную логику,
// вызываемую после каждой мутации журнала оплат, которая приводит
// денормализованные флаги профессора в соответствие с журналом и
// пробным периодом.
package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/jgefitrack/backend/internal/lib/metrics"
	"github.com/jgefitrack/backend/internal/lib/trial"
	"github.com/jgefitrack/backend/internal/models"
	"github.com/jgefitrack/backend/internal/storage/repository"
)

// Result описывает переходы, применённые одним вызовом синхронизатора.
type Result struct {
	// Reactivated — профессор активирован записью, ставшей эффективно активной.
	Reactivated bool `json:"reactivado"`
	// Deactivated — профессор отключён, определяющая запись пропала.
	Deactivated bool `json:"desactivado"`
	// Corrected — хранимый estado записи переписан в vencida.
	Corrected bool `json:"estado_corregido"`
}

// Service применяет правила синхронизации внутри транзакции вызывающего кода.
type Service struct {
	log *slog.Logger
	now func() time.Time
}

// New создаёт синхронизатор. now == nil означает time.Now.
func New(log *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{log: log, now: now}
}

// Apply запускает правила синхронизации для профессора tenantID после
// мутации записи журнала: before == nil — создание, after == nil — удаление.
// Правила применяются по приоритету: коррекция хранимого статуса,
// реактивация, деградация (если пробный период не покрывает разрыв).
// Вызывается строго внутри транзакции, q — её запросы; строка профессора
// блокируется здесь же.
func (s *Service) Apply(ctx context.Context, q *repository.Queries, tenantID int, before, after *models.Subscription) (*Result, error) {
	now := s.now()
	res := &Result{}

	tenant, err := q.GetTenantForUpdate(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// Правка увела запись с хранимым estado=activa в прошлое:
	// сначала чиним кэш статуса, дальше запись оценивается как vencida.
	if after != nil && after.Status == models.StatusActive &&
		after.EffectiveStatus(now) == models.StatusExpired {
		if err := q.UpdateSubscriptionStatus(ctx, after.ID, models.StatusExpired); err != nil {
			return nil, err
		}
		corrected := *after
		corrected.Status = models.StatusExpired
		after = &corrected
		res.Corrected = true
		metrics.SyncTransitions.WithLabelValues("corrected").Inc()
		s.log.Info("rewrote stale stored status to vencida",
			slog.Int("subscription_id", after.ID), slog.Int("tenant_id", tenantID))
	}

	// Реактивация: запись после мутации эффективно активна —
	// подписка берёт верх, пробный период считается израсходованным.
	if after != nil && after.EffectiveStatus(now) == models.StatusActive {
		if !tenant.Active || tenant.OnTrial {
			if err := q.UpdateTenantFlags(ctx, tenantID, true, false); err != nil {
				return nil, err
			}
			res.Reactivated = true
			metrics.SyncTransitions.WithLabelValues("reactivated").Inc()
			s.log.Info("tenant reactivated by subscription",
				slog.Int("tenant_id", tenantID), slog.Int("subscription_id", after.ID))
		}
		return res, nil
	}

	// Деградация: мутация затронула эффективно активную запись и другой
	// такой не осталось. Действующий пробный период покрывает разрыв.
	wasActive := before != nil && before.EffectiveStatus(now) == models.StatusActive
	if !wasActive {
		return res, nil
	}

	best, err := q.FindBestActive(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}
	if best == nil && tenant.Active && !trial.Valid(tenant, now) {
		if err := q.UpdateTenantFlags(ctx, tenantID, false, tenant.OnTrial); err != nil {
			return nil, err
		}
		res.Deactivated = true
		metrics.SyncTransitions.WithLabelValues("deactivated").Inc()
		s.log.Info("tenant deactivated, no active subscription left",
			slog.Int("tenant_id", tenantID))
	}
	return res, nil
}
