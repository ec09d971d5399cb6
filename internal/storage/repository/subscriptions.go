package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jgefitrack/backend/internal/lib/dates"
	"github.com/jgefitrack/backend/internal/models"
)

const subscriptionColumns = `id, id_cliente, fecha_inicio, fecha_fin, estado, monto, metodo_pago, comprobante, notas`

func scanSubscription(row *sql.Row) (*models.Subscription, error) {
	s := &models.Subscription{}
	var receipt, notes sql.NullString
	if err := row.Scan(&s.ID, &s.TenantID, &s.StartDate, &s.EndDate,
		&s.Status, &s.Amount, &s.PaymentMethod, &receipt, &notes); err != nil {
		return nil, err
	}
	s.Receipt = receipt.String
	s.Notes = notes.String
	return s, nil
}

// CreateSubscription вставляет новую запись оплаты и возвращает её ID.
func (q *Queries) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "repository.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO pagos_suscripciones
			      (id_cliente, fecha_inicio, fecha_fin, estado, monto, metodo_pago, comprobante, notas)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID int
	err := q.db.QueryRowContext(ctx, query,
		sub.TenantID, sub.StartDate, sub.EndDate, sub.Status, sub.Amount,
		sub.PaymentMethod, sub.Receipt, sub.Notes).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadSubscription возвращает запись оплаты по её ID.
func (q *Queries) ReadSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "repository.ReadSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM pagos_suscripciones WHERE id = $1`
	sub, err := scanSubscription(q.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ReadSubscriptionForUpdate возвращает запись, блокируя её строку до конца
// транзакции. Используется синхронизатором при правке и удалении.
func (q *Queries) ReadSubscriptionForUpdate(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "repository.ReadSubscriptionForUpdate"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM pagos_suscripciones WHERE id = $1 FOR UPDATE`
	sub, err := scanSubscription(q.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// UpdateSubscription перезаписывает поля записи оплаты по её ID.
func (q *Queries) UpdateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "repository.UpdateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE pagos_suscripciones SET
			      fecha_inicio = $1, fecha_fin = $2, estado = $3, monto = $4,
			      metodo_pago = $5, comprobante = $6, notas = $7
			  WHERE id = $8`
	result, err := q.db.ExecContext(ctx, query,
		sub.StartDate, sub.EndDate, sub.Status, sub.Amount,
		sub.PaymentMethod, sub.Receipt, sub.Notes, sub.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdateSubscriptionStatus перезаписывает только хранимый статус записи.
func (q *Queries) UpdateSubscriptionStatus(ctx context.Context, id int, status string) error {
	const op = "repository.UpdateSubscriptionStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE pagos_suscripciones SET estado = $1 WHERE id = $2`
	result, err := q.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RemoveSubscription удаляет запись оплаты по её ID.
func (q *Queries) RemoveSubscription(ctx context.Context, id int) error {
	const op = "repository.RemoveSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM pagos_suscripciones WHERE id = $1`
	result, err := q.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListSubscriptions возвращает журнал оплат профессора, свежие записи первыми.
func (q *Queries) ListSubscriptions(ctx context.Context, tenantID int) ([]*models.Subscription, error) {
	const op = "repository.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM pagos_suscripciones
			  WHERE id_cliente = $1
			  ORDER BY fecha_inicio DESC`
	return q.listSubscriptions(ctx, op, query, tenantID)
}

// ListAllSubscriptions возвращает все записи оплат с пагинацией.
func (q *Queries) ListAllSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	const op = "repository.ListAllSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM pagos_suscripciones
			  ORDER BY fecha_inicio DESC
			  LIMIT $1 OFFSET $2`
	return q.listSubscriptions(ctx, op, query, limit, offset)
}

func (q *Queries) listSubscriptions(ctx context.Context, op, query string, args ...any) ([]*models.Subscription, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		s := &models.Subscription{}
		var receipt, notes sql.NullString
		if err := rows.Scan(&s.ID, &s.TenantID, &s.StartDate, &s.EndDate,
			&s.Status, &s.Amount, &s.PaymentMethod, &receipt, &notes); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.Receipt = receipt.String
		s.Notes = notes.String
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindBestActive возвращает запись, определяющую право доступа профессора:
// эффективно активную (не cancelada, fecha_fin >= now по календарной дате)
// с самой поздней fecha_fin. Хранимый estado в выборе не участвует,
// кроме липкого cancelada. Возвращает nil без ошибки, когда такой нет.
func (q *Queries) FindBestActive(ctx context.Context, tenantID int, now time.Time) (*models.Subscription, error) {
	const op = "repository.FindBestActive"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM pagos_suscripciones
			  WHERE id_cliente = $1
			    AND estado <> $2
			    AND fecha_fin >= $3
			  ORDER BY fecha_fin DESC
			  LIMIT 1`
	sub, err := scanSubscription(q.db.QueryRowContext(ctx, query,
		tenantID, models.StatusCanceled, dates.Format(now)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ExpireStaleSubscriptions переводит в vencida все записи профессора,
// у которых хранимый estado остался activa, а fecha_fin уже в прошлом.
// Возвращает количество исправленных строк.
func (q *Queries) ExpireStaleSubscriptions(ctx context.Context, tenantID int, now time.Time) (int64, error) {
	const op = "repository.ExpireStaleSubscriptions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE pagos_suscripciones
			  SET estado = $1
			  WHERE id_cliente = $2
			    AND estado = $3
			    AND fecha_fin < $4`
	result, err := q.db.ExecContext(ctx, query,
		models.StatusExpired, tenantID, models.StatusActive, dates.Format(now))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}
