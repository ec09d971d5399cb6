// Package access реализует шлюз доступа: процедуру, решающую при каждой
// проверке авторизации, вправе ли аккаунт профессора работать, и
// применяющую на границах переходов коррекции денормализованных флагов.
package access

import (
	"context"
	"log/slog"
	"time"

	"github.com/jgefitrack/backend/internal/lib/metrics"
	"github.com/jgefitrack/backend/internal/lib/trial"
	"github.com/jgefitrack/backend/internal/models"
	"github.com/jgefitrack/backend/internal/storage/repository"
)

// Decision — результат проверки доступа. Коррекции флагов, применённые
// по пути, возвращаются явно, чтобы побочный эффект чтения был виден
// и проверяем.
type Decision struct {
	Allowed     bool                `json:"permitido"`
	Reason      error               `json:"-"` // причина отказа, nil при допуске
	Tenant      *models.Tenant      `json:"cliente"`
	Corrections *models.TenantFlags `json:"correcciones,omitempty"`
}

// Service — шлюз доступа поверх хранилища.
type Service struct {
	db  *repository.Storage
	log *slog.Logger
	now func() time.Time
}

// New создаёт шлюз доступа. now == nil означает time.Now.
func New(db *repository.Storage, log *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{db: db, log: log, now: now}
}

// Authorize принимает идентификатор профессора после успешной проверки
// учётных данных и возвращает решение о допуске. Чтение, решение и запись
// коррекций выполняются в одной транзакции с блокировкой строки
// профессора, поэтому отказ никогда не сочетается с частично
// применёнными флагами.
//
// Ошибка возвращается только для ненайденного арендатора и сбоев
// хранилища; отказ в доступе — это Decision с заполненным Reason.
func (s *Service) Authorize(ctx context.Context, tenantID int) (*Decision, error) {
	var decision *Decision

	err := s.db.WithTenantTx(ctx, func(q *repository.Queries) error {
		tenant, err := q.GetTenantForUpdate(ctx, tenantID)
		if err != nil {
			return err
		}
		now := s.now()

		if !tenant.Active {
			decision = &Decision{Reason: models.ErrAccountDisabled, Tenant: tenant}
			return nil
		}

		if tenant.OnTrial {
			if trial.Valid(tenant, now) {
				decision = &Decision{Allowed: true, Tenant: tenant}
				return nil
			}
			// Окно истекло: дальше решает журнал оплат.
			best, err := q.FindBestActive(ctx, tenantID, now)
			if err != nil {
				return err
			}
			if best == nil {
				if err := q.UpdateTenantFlags(ctx, tenantID, false, false); err != nil {
					return err
				}
				tenant.Active, tenant.OnTrial = false, false
				decision = &Decision{
					Reason:      models.ErrTrialExpired,
					Tenant:      tenant,
					Corrections: &models.TenantFlags{Active: false, OnTrial: false},
				}
				return nil
			}
			// Подписка берёт верх, пробный период израсходован.
			if err := q.UpdateTenantFlags(ctx, tenantID, true, false); err != nil {
				return err
			}
			tenant.OnTrial = false
			decision = &Decision{
				Allowed:     true,
				Tenant:      tenant,
				Corrections: &models.TenantFlags{Active: true, OnTrial: false},
			}
			return nil
		}

		best, err := q.FindBestActive(ctx, tenantID, now)
		if err != nil {
			return err
		}
		if best == nil {
			if err := q.UpdateTenantFlags(ctx, tenantID, false, false); err != nil {
				return err
			}
			tenant.Active = false
			decision = &Decision{
				Reason:      models.ErrSubscriptionExpired,
				Tenant:      tenant,
				Corrections: &models.TenantFlags{Active: false, OnTrial: false},
			}
			return nil
		}
		decision = &Decision{Allowed: true, Tenant: tenant}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AccessDecisions.WithLabelValues(outcome(decision)).Inc()
	if decision.Allowed {
		s.log.Info("access allowed", slog.Int("tenant_id", tenantID))
	} else {
		s.log.Info("access denied",
			slog.Int("tenant_id", tenantID), slog.String("reason", decision.Reason.Error()))
	}
	return decision, nil
}

func outcome(d *Decision) string {
	switch {
	case d.Allowed:
		return "allow"
	case d.Reason == models.ErrAccountDisabled:
		return "denied_disabled"
	case d.Reason == models.ErrTrialExpired:
		return "denied_trial_expired"
	default:
		return "denied_subscription_expired"
	}
}
