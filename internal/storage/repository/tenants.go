package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jgefitrack/backend/internal/models"
)

const tenantColumns = `id, dni, nombre, email, rol, activo, en_prueba, fecha_prueba_fin, fecha_registro`

func scanTenant(row *sql.Row) (*models.Tenant, error) {
	t := &models.Tenant{}
	var trialEnd sql.NullTime
	if err := row.Scan(&t.ID, &t.DNI, &t.Name, &t.Email, &t.Role,
		&t.Active, &t.OnTrial, &trialEnd, &t.RegisteredAt); err != nil {
		return nil, err
	}
	if trialEnd.Valid {
		t.TrialEndsAt = &trialEnd.Time
	}
	return t, nil
}

// CreateTenant сохраняет нового профессора и возвращает его ID.
func (q *Queries) CreateTenant(ctx context.Context, t models.Tenant) (int, error) {
	const op = "repository.CreateTenant"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO clientes (dni, nombre, email, rol, activo, en_prueba, fecha_prueba_fin)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err := q.db.QueryRowContext(ctx, query,
		t.DNI, t.Name, t.Email, t.Role, t.Active, t.OnTrial, t.TrialEndsAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetTenant возвращает профессора по его ID.
func (q *Queries) GetTenant(ctx context.Context, id int) (*models.Tenant, error) {
	const op = "repository.GetTenant"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + tenantColumns + ` FROM clientes WHERE id = $1`
	t, err := scanTenant(q.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTenantNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// GetTenantForUpdate возвращает профессора, блокируя его строку до конца
// транзакции. Конкурентные проверки доступа и административные правки
// одного арендатора выстраиваются друг за другом на этой блокировке.
func (q *Queries) GetTenantForUpdate(ctx context.Context, id int) (*models.Tenant, error) {
	const op = "repository.GetTenantForUpdate"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + tenantColumns + ` FROM clientes WHERE id = $1 FOR UPDATE`
	t, err := scanTenant(q.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTenantNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// UpdateTenantFlags записывает пару денормализованных флагов доступа.
func (q *Queries) UpdateTenantFlags(ctx context.Context, id int, active, onTrial bool) error {
	const op = "repository.UpdateTenantFlags"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE clientes SET activo = $1, en_prueba = $2 WHERE id = $3`
	result, err := q.db.ExecContext(ctx, query, active, onTrial, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return models.ErrTenantNotFound
	}
	return nil
}

// UpdateTenantTrial открывает или продлевает пробный период: профессор
// активируется, флаг en_prueba взводится, дата окончания перезаписывается.
func (q *Queries) UpdateTenantTrial(ctx context.Context, id int, trialEnd time.Time) error {
	const op = "repository.UpdateTenantTrial"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE clientes
			  SET activo = true, en_prueba = true, fecha_prueba_fin = $1
			  WHERE id = $2`
	result, err := q.db.ExecContext(ctx, query, trialEnd, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return models.ErrTenantNotFound
	}
	return nil
}

// SetTenantActive — административное принудительное переключение флага
// activo, минуя синхронизатор.
func (q *Queries) SetTenantActive(ctx context.Context, id int, active bool) error {
	const op = "repository.SetTenantActive"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE clientes SET activo = $1 WHERE id = $2`
	result, err := q.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return models.ErrTenantNotFound
	}
	return nil
}

// ListProfessors возвращает всех профессоров для административной консоли.
func (q *Queries) ListProfessors(ctx context.Context) ([]*models.Tenant, error) {
	const op = "repository.ListProfessors"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + tenantColumns + `
			  FROM clientes
			  WHERE rol = $1
			  ORDER BY fecha_registro DESC`
	rows, err := q.db.QueryContext(ctx, query, models.RoleProfessor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Tenant
	for rows.Next() {
		t := &models.Tenant{}
		var trialEnd sql.NullTime
		if err := rows.Scan(&t.ID, &t.DNI, &t.Name, &t.Email, &t.Role,
			&t.Active, &t.OnTrial, &trialEnd, &t.RegisteredAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if trialEnd.Valid {
			t.TrialEndsAt = &trialEnd.Time
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListProfessorIDs возвращает идентификаторы всех профессоров.
// Используется свипом согласования.
func (q *Queries) ListProfessorIDs(ctx context.Context) ([]int, error) {
	const op = "repository.ListProfessorIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id FROM clientes WHERE rol = $1 ORDER BY id`
	rows, err := q.db.QueryContext(ctx, query, models.RoleProfessor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountTenantStats подсчитывает агрегаты по профессорам для панели.
func (q *Queries) CountTenantStats(ctx context.Context) (*models.TenantStats, error) {
	const op = "repository.CountTenantStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      COUNT(*),
			      COUNT(*) FILTER (WHERE activo),
			      COUNT(*) FILTER (WHERE en_prueba),
			      COUNT(*) FILTER (WHERE NOT activo)
			  FROM clientes
			  WHERE rol = $1`
	stats := &models.TenantStats{}
	err := q.db.QueryRowContext(ctx, query, models.RoleProfessor).
		Scan(&stats.Total, &stats.Active, &stats.OnTrial, &stats.Disabled)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
