// Package reconciler реализует свип согласования: пакетный проход по всем
// профессорам, переводящий протухшие записи оплат в vencida и отключающий
// аккаунты, чей доступ истёк без единого входа или административной правки.
package reconciler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jgefitrack/backend/internal/lib/metrics"
	"github.com/jgefitrack/backend/internal/lib/sl"
	"github.com/jgefitrack/backend/internal/lib/trial"
	"github.com/jgefitrack/backend/internal/models"
	"github.com/jgefitrack/backend/internal/services/subscription"
	"github.com/jgefitrack/backend/internal/storage/repository"
)

// Summary — итоги одного прохода свипа.
type Summary struct {
	TenantsChecked     int
	RecordsExpired     int64
	TenantsDeactivated int
}

// Service выполняет свип согласования.
type Service struct {
	db     *repository.Storage
	events subscription.Publisher
	log    *slog.Logger
	now    func() time.Time
}

// New создаёт свип. events может быть nil. now == nil означает time.Now.
func New(db *repository.Storage, events subscription.Publisher, log *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{db: db, events: events, log: log, now: now}
}

// Run выполняет один проход по всем профессорам. Каждый профессор
// обрабатывается в собственной транзакции с блокировкой его строки,
// поэтому свип безопасно пересекается с живым трафиком. Повторный запуск
// в тот же момент времени ничего не меняет.
func (s *Service) Run(ctx context.Context) (*Summary, error) {
	ids, err := s.db.ListProfessorIDs(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, id := range ids {
		expired, deactivated, err := s.reconcileTenant(ctx, id)
		if err != nil {
			s.log.Error("failed to reconcile tenant", slog.Int("tenant_id", id), sl.Err(err))
			continue
		}
		summary.TenantsChecked++
		summary.RecordsExpired += expired
		if deactivated {
			summary.TenantsDeactivated++
			s.publishDeactivated(id)
		}
	}

	s.log.Info("reconciliation sweep finished",
		slog.Int("tenants_checked", summary.TenantsChecked),
		slog.Int64("records_expired", summary.RecordsExpired),
		slog.Int("tenants_deactivated", summary.TenantsDeactivated))
	return summary, nil
}

// reconcileTenant — шаг свипа для одного профессора: исправить хранимые
// статусы, затем применить правило деградации синхронизатора.
func (s *Service) reconcileTenant(ctx context.Context, tenantID int) (int64, bool, error) {
	var (
		expired     int64
		deactivated bool
	)
	err := s.db.WithTenantTx(ctx, func(q *repository.Queries) error {
		tenant, err := q.GetTenantForUpdate(ctx, tenantID)
		if err != nil {
			return err
		}
		now := s.now()

		expired, err = q.ExpireStaleSubscriptions(ctx, tenantID, now)
		if err != nil {
			return err
		}

		if !tenant.Active || trial.Valid(tenant, now) {
			return nil
		}
		best, err := q.FindBestActive(ctx, tenantID, now)
		if err != nil {
			return err
		}
		if best != nil {
			return nil
		}
		if err := q.UpdateTenantFlags(ctx, tenantID, false, tenant.OnTrial); err != nil {
			return err
		}
		deactivated = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	if expired > 0 {
		metrics.SweepExpiredRecords.Add(float64(expired))
	}
	if deactivated {
		metrics.SweepDeactivatedTenants.Inc()
	}
	return expired, deactivated, nil
}

// Start запускает свип сразу и затем по тикеру с заданным интервалом,
// пока контекст не отменён.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	s.log.Info("starting reconciliation sweep")
	if _, err := s.Run(ctx); err != nil {
		s.log.Error("reconciliation sweep failed", sl.Err(err))
	}
}

func (s *Service) publishDeactivated(tenantID int) {
	if s.events == nil {
		return
	}
	event := models.LifecycleEvent{
		EventID:    uuid.New().String(),
		TenantID:   tenantID,
		Type:       models.EventTenantDeactivated,
		OccurredAt: s.now(),
	}
	if err := s.events.Publish("deactivated", event); err != nil {
		s.log.Error("failed to publish lifecycle event",
			slog.Int("tenant_id", tenantID), sl.Err(err))
	}
}
