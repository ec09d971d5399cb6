package sync

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgefitrack/backend/internal/models"
	"github.com/jgefitrack/backend/internal/storage/repository"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func fixedNow() time.Time { return testNow }

var tenantCols = []string{"id", "dni", "nombre", "email", "rol", "activo", "en_prueba", "fecha_prueba_fin", "fecha_registro"}

var subscriptionCols = []string{"id", "id_cliente", "fecha_inicio", "fecha_fin", "estado", "monto", "metodo_pago", "comprobante", "notas"}

func tenantRow(active, onTrial bool, trialEnd any) *sqlmock.Rows {
	return sqlmock.NewRows(tenantCols).
		AddRow(42, "12345678", "Juan Perez", "juan@example.com", models.RoleProfessor,
			active, onTrial, trialEnd, testNow.AddDate(0, -2, 0))
}

func subRecord(id int, endDate time.Time, status string) *models.Subscription {
	return &models.Subscription{
		ID:        id,
		TenantID:  42,
		StartDate: endDate.AddDate(0, -1, 0),
		EndDate:   endDate,
		Status:    status,
	}
}

func TestApply(t *testing.T) {
	future := testNow.AddDate(0, 1, 0)
	past := testNow.AddDate(0, 0, -10)

	tests := []struct {
		name      string
		before    *models.Subscription
		after     *models.Subscription
		setupMock func(m sqlmock.Sqlmock)
		want      *Result
	}{
		{
			name:   "создание активной записи реактивирует профессора",
			before: nil,
			after:  subRecord(5, future, models.StatusActive),
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("FOR UPDATE").
					WithArgs(42).
					WillReturnRows(tenantRow(false, false, nil))
				m.ExpectExec("UPDATE clientes SET activo").
					WithArgs(true, false, 42).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			want: &Result{Reactivated: true},
		},
		{
			name:   "создание активной записи снимает пробный период",
			before: nil,
			after:  subRecord(5, future, models.StatusActive),
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("FOR UPDATE").
					WithArgs(42).
					WillReturnRows(tenantRow(true, true, future))
				m.ExpectExec("UPDATE clientes SET activo").
					WithArgs(true, false, 42).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			want: &Result{Reactivated: true},
		},
		{
			name:   "активная запись у активного профессора не трогает флаги",
			before: subRecord(5, future, models.StatusActive),
			after:  subRecord(5, future, models.StatusActive),
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("FOR UPDATE").
					WithArgs(42).
					WillReturnRows(tenantRow(true, false, nil))
			},
			want: &Result{},
		},
		{
			name:   "удаление последней активной записи отключает профессора",
			before: subRecord(5, future, models.StatusActive),
			after:  nil,
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("FOR UPDATE").
					WithArgs(42).
					WillReturnRows(tenantRow(true, false, nil))
				m.ExpectQuery("FROM pagos_suscripciones").
					WithArgs(42, models.StatusCanceled, sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows(subscriptionCols))
				m.ExpectExec("UPDATE clientes SET activo").
					WithArgs(false, false, 42).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			want: &Result{Deactivated: true},
		},
		{
			name:   "действующий пробный период покрывает разрыв",
			before: subRecord(5, future, models.StatusActive),
			after:  nil,
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("FOR UPDATE").
					WithArgs(42).
					WillReturnRows(tenantRow(true, true, future))
				m.ExpectQuery("FROM pagos_suscripciones").
					WithArgs(42, models.StatusCanceled, sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows(subscriptionCols))
			},
			want: &Result{},
		},
		{
			name:   "удаление при живой другой записи не трогает флаги",
			before: subRecord(5, future, models.StatusActive),
			after:  nil,
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("FOR UPDATE").
					WithArgs(42).
					WillReturnRows(tenantRow(true, false, nil))
				m.ExpectQuery("FROM pagos_suscripciones").
					WithArgs(42, models.StatusCanceled, sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows(subscriptionCols).
						AddRow(9, 42, past, future, models.StatusActive,
							1200.0, "efectivo", "", ""))
			},
			want: &Result{},
		},
		{
			name:   "правка записи в прошлое чинит estado и отключает профессора",
			before: subRecord(5, future, models.StatusActive),
			after:  subRecord(5, past, models.StatusActive),
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("FOR UPDATE").
					WithArgs(42).
					WillReturnRows(tenantRow(true, false, nil))
				m.ExpectExec("UPDATE pagos_suscripciones SET estado").
					WithArgs(models.StatusExpired, 5).
					WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectQuery("FROM pagos_suscripciones").
					WithArgs(42, models.StatusCanceled, sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows(subscriptionCols))
				m.ExpectExec("UPDATE clientes SET activo").
					WithArgs(false, false, 42).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			want: &Result{Corrected: true, Deactivated: true},
		},
		{
			name:   "cancelada не трогает хранимый estado",
			before: subRecord(5, future, models.StatusActive),
			after:  subRecord(5, future, models.StatusCanceled),
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("FOR UPDATE").
					WithArgs(42).
					WillReturnRows(tenantRow(true, false, nil))
				m.ExpectQuery("FROM pagos_suscripciones").
					WithArgs(42, models.StatusCanceled, sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows(subscriptionCols))
				m.ExpectExec("UPDATE clientes SET activo").
					WithArgs(false, false, 42).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			want: &Result{Deactivated: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mockDB, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMock(mockDB)

			storage := repository.NewFromDB(db)
			service := New(newNoopLogger(), fixedNow)

			got, err := service.Apply(context.Background(), storage.Queries, 42, tt.before, tt.after)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			assert.NoError(t, mockDB.ExpectationsWereMet())
		})
	}
}
