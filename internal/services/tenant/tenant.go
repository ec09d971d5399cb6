// Package tenant содержит бизнес-логику аккаунтов профессоров:
// регистрацию с открытием пробного периода, административное
// переключение доступа и продление пробного окна.
package tenant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jgefitrack/backend/internal/lib/trial"
	"github.com/jgefitrack/backend/internal/models"
	"github.com/jgefitrack/backend/internal/storage/repository"
)

// Service реализует операции над аккаунтами профессоров.
type Service struct {
	db        *repository.Storage
	log       *slog.Logger
	now       func() time.Time
	trialDays int
}

// New создаёт сервис аккаунтов. trialDays — длительность пробного периода
// при регистрации. now == nil означает time.Now.
func New(db *repository.Storage, log *slog.Logger, trialDays int, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		db:        db,
		log:       log,
		now:       now,
		trialDays: trialDays,
	}
}

// Register создаёт профессора с открытым пробным окном: активен,
// en_prueba взведён, дата окончания — now + trialDays.
func (s *Service) Register(ctx context.Context, req models.DummyTenant) (int, error) {
	trialEnd := trial.Expiry(s.now(), s.trialDays)
	t := models.Tenant{
		DNI:         req.DNI,
		Name:        req.Name,
		Email:       req.Email,
		Role:        models.RoleProfessor,
		Active:      true,
		OnTrial:     true,
		TrialEndsAt: &trialEnd,
	}

	id, err := s.db.CreateTenant(ctx, t)
	if err != nil {
		return 0, err
	}
	s.log.Info("registered professor",
		slog.Int("id", id), slog.Time("trial_ends_at", trialEnd))
	return id, nil
}

// ToggleActive — административное принудительное переключение флага
// activo, минуя синхронизатор.
func (s *Service) ToggleActive(ctx context.Context, id int, active bool) error {
	if err := s.db.SetTenantActive(ctx, id, active); err != nil {
		return err
	}
	s.log.Info("tenant active flag forced",
		slog.Int("id", id), slog.Bool("active", active))
	return nil
}

// ExtendTrial продлевает пробный период на days календарных дней от
// текущего момента, активируя профессора.
func (s *Service) ExtendTrial(ctx context.Context, id, days int) (*models.Tenant, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", models.ErrValidation)
	}

	trialEnd := trial.Expiry(s.now(), days)
	if err := s.db.UpdateTenantTrial(ctx, id, trialEnd); err != nil {
		return nil, err
	}
	s.log.Info("trial extended",
		slog.Int("id", id), slog.Int("days", days), slog.Time("trial_ends_at", trialEnd))
	return s.db.GetTenant(ctx, id)
}

// Get возвращает профессора по ID.
func (s *Service) Get(ctx context.Context, id int) (*models.Tenant, error) {
	return s.db.GetTenant(ctx, id)
}

// List возвращает всех профессоров для административной консоли.
func (s *Service) List(ctx context.Context) ([]*models.Tenant, error) {
	return s.db.ListProfessors(ctx)
}

// Stats возвращает агрегаты по профессорам для панели.
func (s *Service) Stats(ctx context.Context) (*models.TenantStats, error) {
	return s.db.CountTenantStats(ctx)
}
